// Package shader holds the Kage program of the GPU backend and the host-side
// helpers around it: templating the iteration budget, mapping compiler
// errors back to the source they came from, and building uniforms.
//
// The vertex stage is the full-screen quad submitted by the window package;
// only the fragment side is Kage source.
package shader

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	mandel "github.com/marben/latcarf"
)

//go:embed preamble.kage
var preambleSrc string

//go:embed fragment.kage
var fragmentSrc string

// Stage names a source part of the compilation unit.
type Stage string

const (
	StagePreamble Stage = "preamble"
	StageFragment Stage = "fragment"
)

// Params are substituted into the sources before compilation. Kage loops
// need constant bounds, so the budget is baked into the program text.
type Params struct {
	MaxIterations  int
	PlaneSpan      float64
	EscapeRadiusSq float64
}

func DefaultParams() Params {
	return Params{
		MaxIterations:  mandel.MaxIterations,
		PlaneSpan:      mandel.PlaneSpan,
		EscapeRadiusSq: mandel.EscapeRadiusSq,
	}
}

// Part is one stage's source within a Unit.
type Part struct {
	Stage  Stage
	Source string

	// StartLine is the 1-based line of the concatenated unit on which this
	// part begins.
	StartLine int
	Lines     int
}

// Unit is the single compilation unit handed to the shader compiler.
type Unit struct {
	Parts []Part
}

// Build renders the embedded sources with p and concatenates them.
func Build(p Params) (Unit, error) {
	if p.MaxIterations <= 0 {
		return Unit{}, fmt.Errorf("shader: iteration budget must be positive, got %d", p.MaxIterations)
	}
	var parts []Part
	for _, s := range []struct {
		stage Stage
		src   string
	}{
		{StagePreamble, preambleSrc},
		{StageFragment, fragmentSrc},
	} {
		tmpl, err := template.New(string(s.stage)).Parse(s.src)
		if err != nil {
			return Unit{}, fmt.Errorf("shader: parse %s template: %w", s.stage, err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, p); err != nil {
			return Unit{}, fmt.Errorf("shader: execute %s template: %w", s.stage, err)
		}
		parts = append(parts, Part{Stage: s.stage, Source: buf.String()})
	}
	return NewUnit(parts...), nil
}

// NewUnit lays the parts out one after another, each starting on a new line.
func NewUnit(parts ...Part) Unit {
	line := 1
	u := Unit{Parts: make([]Part, 0, len(parts))}
	for _, p := range parts {
		if !strings.HasSuffix(p.Source, "\n") {
			p.Source += "\n"
		}
		p.StartLine = line
		p.Lines = strings.Count(p.Source, "\n")
		line += p.Lines
		u.Parts = append(u.Parts, p)
	}
	return u
}

// Source returns the concatenated program text.
func (u Unit) Source() []byte {
	var b bytes.Buffer
	for _, p := range u.Parts {
		b.WriteString(p.Source)
	}
	return b.Bytes()
}

// Resolve maps a line of the concatenated unit to the stage it belongs to
// and the line within that stage's source.
func (u Unit) Resolve(line int) (Stage, int, bool) {
	for _, p := range u.Parts {
		if line >= p.StartLine && line < p.StartLine+p.Lines {
			return p.Stage, line - p.StartLine + 1, true
		}
	}
	return "", 0, false
}

// CompileError is a shader compilation failure located in its source stage.
type CompileError struct {
	Stage Stage
	Line  int
	Err   error
}

func (e *CompileError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("shader: %s stage: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("shader: %s stage, line %d: %v", e.Stage, e.Line, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

var ErrCompile = errors.New("shader compilation failed")

var linePos = regexp.MustCompile(`(?:^|[\s:(])(\d+):(\d+):`)

// Locate wraps a compiler error in a *CompileError naming the stage and the
// stage-relative line. When the message carries no usable position the
// stage is reported as the fragment stage with line 0.
func (u Unit) Locate(err error) error {
	if err == nil {
		return nil
	}
	ce := &CompileError{Stage: StageFragment, Err: fmt.Errorf("%w: %w", ErrCompile, err)}
	m := linePos.FindStringSubmatch(err.Error())
	if m == nil {
		return ce
	}
	line, convErr := strconv.Atoi(m[1])
	if convErr != nil {
		return ce
	}
	if stage, local, ok := u.Resolve(line); ok {
		ce.Stage, ce.Line = stage, local
	}
	return ce
}

// Options are the per-frame settings passed to the program as uniforms.
type Options struct {
	DistanceAA bool
	Threshold  float64
	Foreground color.RGBA
	Background color.RGBA
}

// Uniforms returns the uniform values for a w×h target seen through cam.
func Uniforms(cam mandel.Camera, w, h int, o Options) map[string]any {
	aa := float32(0)
	if o.DistanceAA {
		aa = 1
	}
	return map[string]any{
		"Offset":     []float32{float32(cam.OffsetReal), float32(cam.OffsetImag)},
		"Scale":      float32(cam.Scale),
		"Size":       []float32{float32(w), float32(h)},
		"DistanceAA": aa,
		"Threshold":  float32(o.Threshold),
		"Foreground": vec4(o.Foreground),
		"Background": vec4(o.Background),
	}
}

// vec4 converts c to premultiplied components in [0, 1].
func vec4(c color.RGBA) []float32 {
	return []float32{
		float32(c.R) / 0xff,
		float32(c.G) / 0xff,
		float32(c.B) / 0xff,
		float32(c.A) / 0xff,
	}
}

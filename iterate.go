package mandel

import "math"

const (
	// MaxIterations is the default iteration budget shared by both backends.
	MaxIterations = 200

	// EscapeRadiusSq is the squared bailout radius: |z| > 2.
	EscapeRadiusSq = 4.0
)

// State is the iterate of z -> z² + c after the last executed step.
//
// ZRealSq and ZImagSq cache the squares of the current iterate. DReal and
// DImag hold dz/dc and stay zero unless the derivative is tracked.
type State struct {
	ZReal, ZImag     float64
	ZRealSq, ZImagSq float64
	DReal, DImag     float64

	// I is the step at which the iterate escaped, or the budget when it
	// did not.
	I int
}

// Result is the outcome of evaluating one point.
// Escaped == false means the iteration budget was exhausted.
type Result struct {
	Escaped bool
	State   State

	derivative bool
}

// Depth is the bounded-depth projection: the escape step, or the budget
// when the point never escaped.
func (r Result) Depth() int {
	return r.State.I
}

// EscapeDepth is the optional-depth projection: ok is false for points that
// did not escape.
func (r Result) EscapeDepth() (int, bool) {
	if !r.Escaped {
		return 0, false
	}
	return r.State.I, true
}

// Distance returns the estimated distance |z|·ln|z| / |z'| to the set.
// ok is false when the point did not escape or the derivative was not
// tracked. A zero |z'| yields +Inf or NaN; see Drawable.
func (r Result) Distance() (float64, bool) {
	if !r.Escaped || !r.derivative {
		return 0, false
	}
	zAbs := math.Sqrt(r.State.ZRealSq + r.State.ZImagSq)
	dAbs := math.Sqrt(r.State.DReal*r.State.DReal + r.State.DImag*r.State.DImag)
	return zAbs * math.Log(zAbs) / dAbs, true
}

// Escape runs the escape-time recurrence for c without the derivative.
func Escape(cReal, cImag float64, maxIterations int) Result {
	return escape(cReal, cImag, maxIterations, false)
}

// EscapeDerivative runs the escape-time recurrence for c and carries dz/dc
// along, seeded at 1+0i.
func EscapeDerivative(cReal, cImag float64, maxIterations int) Result {
	return escape(cReal, cImag, maxIterations, true)
}

func escape(cReal, cImag float64, maxIterations int, derivative bool) Result {
	var s State
	if derivative {
		s.DReal = 1
	}
	for i := 0; i < maxIterations; i++ {
		if derivative {
			// z'_{n+1} = 2·z_n·z'_n + 1, with z_n before the update
			dr := 2*(s.ZReal*s.DReal-s.ZImag*s.DImag) + 1
			s.DImag = 2 * (s.ZReal*s.DImag + s.ZImag*s.DReal)
			s.DReal = dr
		}
		s.ZImag = 2*s.ZReal*s.ZImag + cImag
		s.ZReal = s.ZRealSq - s.ZImagSq + cReal
		s.ZRealSq = s.ZReal * s.ZReal
		s.ZImagSq = s.ZImag * s.ZImag
		if s.ZRealSq+s.ZImagSq > EscapeRadiusSq {
			s.I = i
			return Result{Escaped: true, State: s, derivative: derivative}
		}
	}
	s.I = max(maxIterations, 0)
	return Result{State: s, derivative: derivative}
}

// Depth returns the step at which c escaped, or maxIterations if it never did.
func Depth(cReal, cImag float64, maxIterations int) int {
	return Escape(cReal, cImag, maxIterations).Depth()
}

// EscapeDepth returns the step at which c escaped; ok is false for points
// considered inside the set.
func EscapeDepth(cReal, cImag float64, maxIterations int) (int, bool) {
	return Escape(cReal, cImag, maxIterations).EscapeDepth()
}

// DistanceEstimate returns the escape step and the estimated distance from c
// to the set boundary. ok is false for points that never escape.
func DistanceEstimate(cReal, cImag float64, maxIterations int) (iterations int, distance float64, ok bool) {
	r := EscapeDerivative(cReal, cImag, maxIterations)
	d, ok := r.Distance()
	if !ok {
		return 0, 0, false
	}
	return r.State.I, d, true
}

// Drawable reports whether a point with result r is painted in foreground.
// Without distance anti-aliasing every escaped point is drawn. With it, the
// distance must be finite and exceed threshold·pixelScale.
func Drawable(r Result, distanceAA bool, threshold, pixelScale float64) bool {
	if !r.Escaped {
		return false
	}
	if !distanceAA {
		return true
	}
	d, ok := r.Distance()
	if !ok || math.IsInf(d, 0) || math.IsNaN(d) {
		return false
	}
	return d > threshold*pixelScale
}

// Double evaluates points in float64, the host's native precision.
type Double struct {
	MaxIterations int
	Derivative    bool
}

func (d Double) Evaluate(cReal, cImag float64) Result {
	return escape(cReal, cImag, d.MaxIterations, d.Derivative)
}

var _ Evaluator = Double{}

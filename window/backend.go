package window

import (
	"context"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	mandel "github.com/marben/latcarf"
	"github.com/marben/latcarf/render"
	"github.com/marben/latcarf/shader"
)

// Backend draws one frame onto the window's screen image.
type Backend interface {
	Name() string
	Draw(ctx context.Context, screen *ebiten.Image, cam mandel.Camera) error
}

// CPU renders on the host into an RGBA frame and uploads it each frame.
type CPU struct {
	r     mandel.Renderer
	frame *image.RGBA
	img   *ebiten.Image
}

func NewCPU(r render.RendererImpl) *CPU {
	return &CPU{r: r}
}

func (b *CPU) Name() string { return "cpu" }

func (b *CPU) Draw(ctx context.Context, screen *ebiten.Image, cam mandel.Camera) error {
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	if b.frame == nil || b.frame.Bounds().Dx() != w || b.frame.Bounds().Dy() != h {
		b.frame = image.NewRGBA(image.Rect(0, 0, w, h))
		if b.img != nil {
			b.img.Deallocate()
		}
		b.img = ebiten.NewImage(w, h)
	}

	if err := b.r.Render(ctx, b.frame, cam); err != nil {
		return err
	}
	b.img.WritePixels(b.frame.Pix)
	screen.DrawImage(b.img, nil)
	return nil
}

// GPU evaluates every pixel in the fragment program.
type GPU struct {
	shader *ebiten.Shader
	opts   shader.Options
}

// NewGPU compiles u. A compile failure is returned as a *shader.CompileError
// naming the failing stage and line.
func NewGPU(u shader.Unit, opts shader.Options) (*GPU, error) {
	s, err := ebiten.NewShader(u.Source())
	if err != nil {
		return nil, u.Locate(err)
	}
	return &GPU{shader: s, opts: opts}, nil
}

func (b *GPU) Name() string { return "gpu" }

var quadIndices = []uint16{0, 1, 2, 1, 3, 2}

func (b *GPU) Draw(_ context.Context, screen *ebiten.Image, cam mandel.Camera) error {
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	vs := quad(w, h)
	screen.DrawTrianglesShader(vs[:], quadIndices, b.shader, &ebiten.DrawTrianglesShaderOptions{
		Uniforms: shader.Uniforms(cam, w, h, b.opts),
	})
	return nil
}

// quad covers the whole w×h target with two triangles.
func quad(w, h int) [4]ebiten.Vertex {
	fw, fh := float32(w), float32(h)
	v := func(x, y float32) ebiten.Vertex {
		return ebiten.Vertex{DstX: x, DstY: y, SrcX: x, SrcY: y, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1}
	}
	return [4]ebiten.Vertex{v(0, 0), v(fw, 0), v(0, fh), v(fw, fh)}
}

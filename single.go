package mandel

// Single evaluates points with float32 arithmetic, step for step the way the
// fragment shader does. It is the host-side model of the GPU backend.
type Single struct {
	MaxIterations int
	Derivative    bool
}

func (s Single) Evaluate(cReal, cImag float64) Result {
	return escape32(float32(cReal), float32(cImag), s.MaxIterations, s.Derivative)
}

// EvaluatePixel evaluates pixel (x, y) of a w×h framebuffer. The camera and
// size are narrowed to float32 first and the mapping is done in float32,
// as the shader receives them as uniforms.
func (s Single) EvaluatePixel(cam Camera, x, y, w, h int) Result {
	cr, ci := cam.PixelToComplex32(x, y, w, h)
	return escape32(cr, ci, s.MaxIterations, s.Derivative)
}

var _ PixelEvaluator = Single{}

// PixelToComplex32 is PixelToComplex in float32 arithmetic.
func (c Camera) PixelToComplex32(x, y, w, h int) (cReal, cImag float32) {
	fw, fh := float32(w), float32(h)
	ps := float32(c.Scale) * PlaneSpan / fw
	cReal = (float32(x)-0.5*fw)*ps + float32(c.OffsetReal)
	cImag = (float32(y)-0.5*fh)*ps + float32(c.OffsetImag)
	return cReal, cImag
}

func escape32(cReal, cImag float32, maxIterations int, derivative bool) Result {
	var zr, zi, zr2, zi2, dr, di float32
	if derivative {
		dr = 1
	}
	i := 0
	escaped := false
	for ; i < maxIterations; i++ {
		if derivative {
			ndr := 2*(zr*dr-zi*di) + 1
			di = 2 * (zr*di + zi*dr)
			dr = ndr
		}
		zi = 2*zr*zi + cImag
		zr = zr2 - zi2 + cReal
		zr2 = zr * zr
		zi2 = zi * zi
		if zr2+zi2 > EscapeRadiusSq {
			escaped = true
			break
		}
	}
	return Result{
		Escaped: escaped,
		State: State{
			ZReal:   float64(zr),
			ZImag:   float64(zi),
			ZRealSq: float64(zr2),
			ZImagSq: float64(zi2),
			DReal:   float64(dr),
			DImag:   float64(di),
			I:       max(i, 0),
		},
		derivative: derivative,
	}
}

package mandel

import (
	"sort"
	"strings"
)

// Region within the Mandelbrot set
type Region struct {
	Xmin, Xmax float64
	Ymin, Ymax float64
}

// Camera returns the camera centered on r whose horizontal span is exactly
// Xmax-Xmin. The vertical extent follows the framebuffer's aspect ratio.
func (r Region) Camera() Camera {
	return Camera{
		OffsetReal: (r.Xmin + r.Xmax) / 2,
		OffsetImag: (r.Ymin + r.Ymax) / 2,
		Scale:      (r.Xmax - r.Xmin) / PlaneSpan,
	}
}

// Classic regions / landmarks in the Mandelbrot set
var (
	// Whole set, the view at zoom 1.0
	WholeSet = Region{
		Xmin: -2,
		Xmax: 2,
		Ymin: -1.125,
		Ymax: 1.125,
	}

	// Seahorse Valley – dense filaments and repeating “seahorse” curls
	SeahorseValley = Region{
		Xmin: -0.8,
		Xmax: -0.7,
		Ymin: 0.05,
		Ymax: 0.15,
	}

	// Elephant Valley – large bulb with trunk-like tendrils
	ElephantValley = Region{
		Xmin: -1.85,
		Xmax: -1.75,
		Ymin: -0.10,
		Ymax: -0.02,
	}

	// Spiral Minibrot – small Mandelbrot copy with tight spiral arms
	SpiralMinibrot = Region{
		Xmin: -0.7435,
		Xmax: -0.7420,
		Ymin: 0.1310,
		Ymax: 0.1325,
	}

	// Triple Spiral – threefold symmetric spiral structure
	TripleSpiral = Region{
		Xmin: -0.7480,
		Xmax: -0.7450,
		Ymin: 0.0950,
		Ymax: 0.0980,
	}

	// Valley of the Dragon – deep, highly detailed spiral filaments
	ValleyOfTheDragon = Region{
		Xmin: -0.7400,
		Xmax: -0.7350,
		Ymin: 0.1800,
		Ymax: 0.1850,
	}

	// Minibrot in a Mini-Spiral – self-similar Mandelbrot copy inside a spiral arm
	MinibrotInMiniSpiral = Region{
		Xmin: -1.7390,
		Xmax: -1.7375,
		Ymin: -0.0235,
		Ymax: -0.0220,
	}
)

var landmarks = map[string]Region{
	"whole":         WholeSet,
	"seahorse":      SeahorseValley,
	"elephant":      ElephantValley,
	"spiral":        SpiralMinibrot,
	"triple-spiral": TripleSpiral,
	"dragon":        ValleyOfTheDragon,
	"mini-spiral":   MinibrotInMiniSpiral,
}

// Landmark looks a region up by its short name. Lookup is case-insensitive.
func Landmark(name string) (Region, bool) {
	r, ok := landmarks[strings.ToLower(name)]
	return r, ok
}

// LandmarkNames returns the known landmark names in sorted order.
func LandmarkNames() []string {
	names := make([]string, 0, len(landmarks))
	for n := range landmarks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

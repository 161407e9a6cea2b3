package tools

import (
	"github.com/Faultbox/midgard-editor/internal/brush"
	"github.com/Faultbox/midgard-editor/internal/fractal"
	"github.com/chewxy/math32"
)

// roughDamping scales the raw noise down before it reaches the terrain.
const roughDamping = 0.1

// RoughParams configures the roughen brush. The amplitude is the brush power.
type RoughParams struct {
	Roughness  float32 `yaml:"roughness" json:"roughness"`
	Frequency  float32 `yaml:"frequency" json:"frequency"`
	Lacunarity float32 `yaml:"lacunarity" json:"lacunarity"`
	Octaves    int     `yaml:"octaves" json:"octaves"`
	Scale      float32 `yaml:"scale" json:"scale"`
	Seed       int64   `yaml:"seed" json:"seed"`
}

// DefaultRoughParams returns the stock roughen settings.
func DefaultRoughParams() RoughParams {
	return RoughParams{
		Roughness:  1.2,
		Frequency:  0.2,
		Lacunarity: 2.12,
		Octaves:    8,
		Scale:      1,
	}
}

// RoughField builds the fractal generator the roughen brush samples:
// fractal sum noise, perturbed, then one erosion pass with smoothing before
// and after it.
func RoughField(p RoughParams, amplitude float32) *fractal.FilteredBasis {
	sum := fractal.NewSum(fractal.Params{
		Roughness:  p.Roughness,
		Frequency:  p.Frequency,
		Amplitude:  amplitude,
		Lacunarity: p.Lacunarity,
		Octaves:    p.Octaves,
		Scale:      p.Scale,
		Seed:       p.Seed,
	})

	smooth := &fractal.SmoothFilter{Radius: 1, Effect: 0.1}
	field := fractal.NewFilteredBasis(sum)
	field.AddPreFilter(fractal.NewPerturbFilter(0.2, p.Seed+1))
	field.AddPreFilter(&fractal.IterativeFilter{
		Pre:        []fractal.Filter{smooth},
		Filter:     &fractal.ErodeFilter{Radius: 5, Talus: 0.011},
		Post:       []fractal.Filter{smooth},
		Iterations: 1,
	})
	return field
}

func rough(p RoughParams, in Input) Edits {
	radius := in.Brush.Radius
	size := int(radius * 2)
	if size < 1 {
		size = 1
	}
	samples := footprint(in)
	if len(samples) == 0 {
		return Edits{Mode: Adjust}
	}

	buf := RoughField(p, in.Brush.Power).Buffer(in.Contact.X-radius, in.Contact.Z-radius, 0, size)

	e := Edits{Mode: Adjust}
	for _, s := range samples {
		w := brush.Falloff(s.DX, s.DZ, radius)
		if w <= 0 {
			continue
		}
		bx := bufferCell(s.DX+radius, size)
		bz := bufferCell(s.DZ+radius, size)
		e.add(s.Coord, buf[bz*size+bx]*w*roughDamping)
	}
	return e
}

func bufferCell(offset float32, size int) int {
	i := int(math32.Floor(offset))
	if i < 0 {
		return 0
	}
	if i >= size {
		return size - 1
	}
	return i
}

// Package fractal generates procedural height fields: a multi-octave noise
// basis sampled into square buffers and post-processed by a filter chain.
package fractal

import (
	"github.com/aquilax/go-perlin"
	"github.com/chewxy/math32"
)

// Basis is a continuous noise function.
type Basis interface {
	Value(x, y, z float32) float32
}

// Params configures a fractal Sum.
type Params struct {
	Roughness  float32 `yaml:"roughness"`
	Frequency  float32 `yaml:"frequency"`
	Amplitude  float32 `yaml:"amplitude"`
	Lacunarity float32 `yaml:"lacunarity"`
	Octaves    int     `yaml:"octaves"`
	Scale      float32 `yaml:"scale"`
	Seed       int64   `yaml:"seed"`
}

// Normalized returns p with lacunarity above 1, at least one octave and the
// scale inside [0, 1].
func (p Params) Normalized() Params {
	if p.Lacunarity <= 1 {
		p.Lacunarity = 1.1
	}
	if p.Octaves < 1 {
		p.Octaves = 1
	}
	if p.Scale > 1 {
		p.Scale = 1
	}
	if p.Scale < 0 {
		p.Scale = 0
	}
	return p
}

// Sum is fractal sum noise: octaves of perlin noise, each lacunarity times
// the frequency of the last and weighted by lacunarity^-roughness, modulated
// into [0, 1] and scaled by the amplitude.
type Sum struct {
	params Params
	noise  *perlin.Perlin
	norm   float32
}

// NewSum builds a Sum from normalized params.
func NewSum(p Params) *Sum {
	p = p.Normalized()

	// go-perlin divides octave i by alpha^i and multiplies its frequency by beta.
	alpha := math32.Pow(p.Lacunarity, p.Roughness)
	if alpha <= 0 {
		alpha = 1
	}

	var norm float32
	w := float32(1)
	for range p.Octaves {
		norm += w
		w /= alpha
	}

	return &Sum{
		params: p,
		noise:  perlin.NewPerlin(float64(alpha), float64(p.Lacunarity), p.Octaves, p.Seed),
		norm:   norm,
	}
}

// Params returns the normalized parameters.
func (s *Sum) Params() Params {
	return s.params
}

// Value implements Basis. The result lies in [0, Amplitude].
func (s *Sum) Value(x, y, z float32) float32 {
	if s.params.Amplitude == 0 {
		return 0
	}
	f := s.params.Scale * s.params.Frequency
	n := float32(s.noise.Noise3D(float64(x*f), float64(y*f), float64(z*f))) / s.norm
	return clamp01(n*0.5+0.5) * s.params.Amplitude
}

func clamp01(f float32) float32 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

package fractal

import (
	"testing"

	"github.com/chewxy/math32"
)

func testParams() Params {
	return Params{
		Roughness:  0.5,
		Frequency:  8,
		Amplitude:  1,
		Lacunarity: 2.1,
		Octaves:    6,
		Scale:      1,
		Seed:       42,
	}
}

func TestParams_Normalized(t *testing.T) {
	p := Params{Lacunarity: 0.5, Octaves: 0, Scale: 3}.Normalized()
	if p.Lacunarity != 1.1 {
		t.Errorf("expected lacunarity 1.1, got %v", p.Lacunarity)
	}
	if p.Octaves != 1 {
		t.Errorf("expected 1 octave, got %d", p.Octaves)
	}
	if p.Scale != 1 {
		t.Errorf("expected scale 1, got %v", p.Scale)
	}
	if got := (Params{Scale: -1}).Normalized().Scale; got != 0 {
		t.Errorf("expected scale 0, got %v", got)
	}
}

func TestSum_RangeAndDeterminism(t *testing.T) {
	a := NewSum(testParams())
	b := NewSum(testParams())

	for i := 0; i < 100; i++ {
		x, y := float32(i)*0.137, float32(i)*0.291
		v := a.Value(x, y, 0)
		if v < 0 || v > 1 {
			t.Fatalf("Value(%v, %v) = %v outside [0, amplitude]", x, y, v)
		}
		if w := b.Value(x, y, 0); v != w {
			t.Fatalf("same seed produced %v and %v", v, w)
		}
	}
}

func TestSum_ZeroAmplitude(t *testing.T) {
	p := testParams()
	p.Amplitude = 0
	s := NewSum(p)

	if v := s.Value(0.3, 0.7, 0); v != 0 {
		t.Errorf("expected 0 with zero amplitude, got %v", v)
	}
}

func TestFilteredBasis_BufferSizeAndZero(t *testing.T) {
	p := testParams()
	p.Amplitude = 0
	fb := NewFilteredBasis(NewSum(p))
	fb.AddPreFilter(&IterativeFilter{
		Pre:        []Filter{NewPerturbFilter(0.2, 1)},
		Filter:     &ErodeFilter{Radius: 5, Talus: 0.011},
		Post:       []Filter{&SmoothFilter{Radius: 1, Effect: 0.1}},
		Iterations: 1,
	})

	buf := fb.Buffer(-4, -4, 0, 8)
	if len(buf) != 64 {
		t.Fatalf("expected 64 samples, got %d", len(buf))
	}
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("sample %d = %v, expected 0 for zero amplitude", i, v)
		}
	}
}

func TestFilteredBasis_Margin(t *testing.T) {
	fb := NewFilteredBasis(NewSum(testParams()))
	fb.AddPreFilter(&SmoothFilter{Radius: 1, Effect: 0.5})
	fb.AddPostFilter(&ErodeFilter{Radius: 2, Talus: 0.1})

	if got := fb.Margin(10, 0); got != 4 {
		t.Errorf("expected margin 4, got %d", got)
	}
	if buf := fb.Buffer(0, 0, 0, 0); buf != nil {
		t.Error("expected nil buffer for size 0")
	}
}

func TestSmoothFilter_FlattensSpike(t *testing.T) {
	const size = 5
	data := make([]float32, size*size)
	data[2*size+2] = 9

	out := (&SmoothFilter{Radius: 1, Effect: 1}).Apply(0, 0, 0, data, size)
	if got := out[2*size+2]; got != 1 {
		t.Errorf("expected spike averaged to 1, got %v", got)
	}
	if data[2*size+2] != 9 {
		t.Error("Apply modified its input")
	}
}

func TestErodeFilter_KeepsFlatAndCliffs(t *testing.T) {
	const size = 9
	flat := make([]float32, size*size)
	for i := range flat {
		flat[i] = 0.5
	}
	e := &ErodeFilter{Radius: 2, Talus: 0.1}
	for i, v := range e.Apply(0, 0, 0, flat, size) {
		if v != 0.5 {
			t.Fatalf("flat sample %d changed to %v", i, v)
		}
	}

	// A step of height 1 is steeper than the talus: the upper plateau does
	// not average with the lower one.
	step := make([]float32, size*size)
	for y := range size {
		for x := 5; x < size; x++ {
			step[y*size+x] = 1
		}
	}
	out := e.Apply(0, 0, 0, step, size)
	if got := out[4*size+5]; got != 1 {
		t.Errorf("plateau edge changed to %v", got)
	}
	if got := out[4*size+4]; got != 0 {
		t.Errorf("lower edge changed to %v", got)
	}
}

func TestPerturbFilter_PermutesValues(t *testing.T) {
	const size = 16
	data := make([]float32, size*size)
	for i := range data {
		data[i] = float32(i)
	}
	out := NewPerturbFilter(0.2, 7).Apply(0, 0, 0, data, size)

	for i, v := range out {
		if v < 0 || v >= size*size || v != math32.Floor(v) {
			t.Fatalf("sample %d = %v is not a source sample", i, v)
		}
	}
}

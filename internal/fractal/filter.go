package fractal

import (
	"github.com/aquilax/go-perlin"
	"github.com/chewxy/math32"
)

// Filter transforms a square work buffer. Filters that read neighbors
// declare the border they need through Margin, so the caller can generate a
// larger buffer and clip the result.
type Filter interface {
	// Margin returns the total margin needed when this filter runs after
	// filters that already need margin cells, for an output of size cells.
	Margin(size, margin int) int
	// Apply filters data, a size x size row-major buffer whose top-left
	// sample sits at (sx, sy). It may return a new slice.
	Apply(sx, sy, base float32, data []float32, size int) []float32
}

// FilteredBasis samples a Basis into buffers and runs them through pre and
// post filter chains.
type FilteredBasis struct {
	basis Basis
	pre   []Filter
	post  []Filter
}

// NewFilteredBasis wraps basis with an empty filter chain.
func NewFilteredBasis(basis Basis) *FilteredBasis {
	return &FilteredBasis{basis: basis}
}

// AddPreFilter appends a filter to the pre chain.
func (f *FilteredBasis) AddPreFilter(filter Filter) {
	f.pre = append(f.pre, filter)
}

// AddPostFilter appends a filter to the post chain.
func (f *FilteredBasis) AddPostFilter(filter Filter) {
	f.post = append(f.post, filter)
}

// Value implements Basis without filtering.
func (f *FilteredBasis) Value(x, y, z float32) float32 {
	return f.basis.Value(x, y, z)
}

// Margin returns the border the whole chain needs around size cells.
func (f *FilteredBasis) Margin(size, margin int) int {
	for _, filter := range f.pre {
		margin = filter.Margin(size, margin)
	}
	for _, filter := range f.post {
		margin = filter.Margin(size, margin)
	}
	return margin
}

// Buffer returns a size x size buffer whose sample (x, y) is the filtered
// basis at ((sx+x)/size, (sy+y)/size, base).
func (f *FilteredBasis) Buffer(sx, sy, base float32, size int) []float32 {
	if size <= 0 {
		return nil
	}
	margin := f.Margin(size, 0)
	work := size + 2*margin
	unit := 1 / float32(size)

	data := make([]float32, work*work)
	for y := range work {
		for x := range work {
			px := (sx + float32(x-margin)) * unit
			py := (sy + float32(y-margin)) * unit
			data[y*work+x] = f.basis.Value(px, py, base)
		}
	}

	ox, oy := sx-float32(margin), sy-float32(margin)
	for _, filter := range f.pre {
		data = filter.Apply(ox, oy, base, data, work)
	}
	for _, filter := range f.post {
		data = filter.Apply(ox, oy, base, data, work)
	}
	return clip(data, work, size, margin)
}

func clip(data []float32, work, size, margin int) []float32 {
	if margin == 0 {
		return data
	}
	out := make([]float32, size*size)
	for y := range size {
		copy(out[y*size:(y+1)*size], data[(y+margin)*work+margin:])
	}
	return out
}

// IterativeFilter runs pre filters, the main filter and post filters the
// configured number of times.
type IterativeFilter struct {
	Pre        []Filter
	Filter     Filter
	Post       []Filter
	Iterations int
}

// Margin implements Filter.
func (it *IterativeFilter) Margin(size, margin int) int {
	for range it.Iterations {
		for _, f := range it.Pre {
			margin = f.Margin(size, margin)
		}
		if it.Filter != nil {
			margin = it.Filter.Margin(size, margin)
		}
		for _, f := range it.Post {
			margin = f.Margin(size, margin)
		}
	}
	return margin
}

// Apply implements Filter.
func (it *IterativeFilter) Apply(sx, sy, base float32, data []float32, size int) []float32 {
	for range it.Iterations {
		for _, f := range it.Pre {
			data = f.Apply(sx, sy, base, data, size)
		}
		if it.Filter != nil {
			data = it.Filter.Apply(sx, sy, base, data, size)
		}
		for _, f := range it.Post {
			data = f.Apply(sx, sy, base, data, size)
		}
	}
	return data
}

// PerturbFilter displaces every lookup by a noise offset of up to Magnitude
// times the buffer size, breaking up the grid regularity of the basis.
type PerturbFilter struct {
	Magnitude float32
	noise     *perlin.Perlin
}

// NewPerturbFilter creates a perturb filter with its own displacement noise.
func NewPerturbFilter(magnitude float32, seed int64) *PerturbFilter {
	return &PerturbFilter{
		Magnitude: magnitude,
		noise:     perlin.NewPerlin(2, 2, 2, seed),
	}
}

// Margin implements Filter.
func (p *PerturbFilter) Margin(size, margin int) int {
	return margin + int(math32.Ceil(p.Magnitude*float32(size)))
}

// Apply implements Filter.
func (p *PerturbFilter) Apply(sx, sy, base float32, data []float32, size int) []float32 {
	if p.Magnitude == 0 {
		return data
	}
	reach := p.Magnitude * float32(size) / (1 + 2*p.Magnitude)
	unit := 1 / float32(size)

	out := make([]float32, len(data))
	for y := range size {
		for x := range size {
			nx := float64((sx + float32(x)) * unit)
			ny := float64((sy + float32(y)) * unit)
			ox := float32(p.noise.Noise3D(nx, ny, float64(base))) * reach
			oy := float32(p.noise.Noise3D(nx+17.3, ny+31.7, float64(base))) * reach

			srcX := clampIndex(x+int(math32.Floor(ox+0.5)), size)
			srcY := clampIndex(y+int(math32.Floor(oy+0.5)), size)
			out[y*size+x] = data[srcY*size+srcX]
		}
	}
	return out
}

// ErodeFilter flattens gentle slopes while leaving steps steeper than Talus
// intact. Each sample is averaged with the run of samples along the four
// axis directions, up to Radius away, that stays below the talus slope.
type ErodeFilter struct {
	Radius int
	Talus  float32
}

// Margin implements Filter.
func (e *ErodeFilter) Margin(size, margin int) int {
	return margin + e.Radius + 1
}

// Apply implements Filter.
func (e *ErodeFilter) Apply(sx, sy, base float32, data []float32, size int) []float32 {
	out := make([]float32, len(data))
	copy(out, data)

	dirs := [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	for y := e.Radius; y < size-e.Radius; y++ {
		for x := e.Radius; x < size-e.Radius; x++ {
			h := data[y*size+x]
			sum, count := h, float32(1)

			for _, d := range dirs {
				prev := h
				for step := 1; step <= e.Radius; step++ {
					next := data[(y+d[1]*step)*size+x+d[0]*step]
					if math32.Abs(next-prev) > e.Talus {
						break
					}
					sum += next
					count++
					prev = next
				}
			}
			out[y*size+x] = sum / count
		}
	}
	return out
}

// SmoothFilter blends every sample with the box average of its neighborhood.
// Effect 0 leaves the buffer unchanged, 1 replaces it with the average.
type SmoothFilter struct {
	Radius int
	Effect float32
}

// Margin implements Filter.
func (s *SmoothFilter) Margin(size, margin int) int {
	return margin + s.Radius
}

// Apply implements Filter.
func (s *SmoothFilter) Apply(sx, sy, base float32, data []float32, size int) []float32 {
	if s.Radius <= 0 || s.Effect == 0 {
		return data
	}
	out := make([]float32, len(data))
	for y := range size {
		for x := range size {
			var sum float32
			var count int
			for dy := -s.Radius; dy <= s.Radius; dy++ {
				for dx := -s.Radius; dx <= s.Radius; dx++ {
					sum += data[clampIndex(y+dy, size)*size+clampIndex(x+dx, size)]
					count++
				}
			}
			h := data[y*size+x]
			out[y*size+x] = h + (sum/float32(count)-h)*s.Effect
		}
	}
	return out
}

func clampIndex(i, size int) int {
	if i < 0 {
		return 0
	}
	if i >= size {
		return size - 1
	}
	return i
}

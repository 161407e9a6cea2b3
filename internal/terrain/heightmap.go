package terrain

import (
	"fmt"

	"github.com/Faultbox/midgard-editor/pkg/formats"
	mathx "github.com/Faultbox/midgard-editor/pkg/math"
)

// FromGAT builds a grid from the corner altitudes of a GAT table. A table of
// W x H cells yields (W+1) x (H+1) samples; shared corners are averaged.
func FromGAT(gat *formats.GAT, worldScale, localScale mathx.Vec3) (*Grid, error) {
	width := int(gat.Width) + 1
	depth := int(gat.Height) + 1

	g, err := NewGrid(width, depth, worldScale, localScale)
	if err != nil {
		return nil, err
	}

	counts := make([]int, width*depth)
	for y := range int(gat.Height) {
		for x := range int(gat.Width) {
			cell := gat.GetCell(x, y)
			for corner, alt := range cell.Heights {
				i := latticeIndex(width, x, y, corner)
				// Negate because GAT altitudes grow downwards.
				g.heights[i] += -alt
				counts[i]++
			}
		}
	}
	for i, n := range counts {
		if n > 1 {
			g.heights[i] /= float32(n)
		}
	}

	g.UpdateBounds()
	return g, nil
}

// ToGAT writes the grid heights back into the corners of gat. When gat is nil
// a new walkable table is created. Cell types are preserved.
func ToGAT(g *Grid, gat *formats.GAT) (*formats.GAT, error) {
	width, depth := g.Size()
	if width < 2 || depth < 2 {
		return nil, fmt.Errorf("%w: %dx%d samples cannot form GAT cells", ErrInvalidSize, width, depth)
	}

	if gat == nil {
		var err error
		gat, err = formats.NewGAT(uint32(width-1), uint32(depth-1))
		if err != nil {
			return nil, err
		}
	} else if int(gat.Width) != width-1 || int(gat.Height) != depth-1 {
		return nil, fmt.Errorf("%w: grid %dx%d does not match GAT %dx%d", ErrInvalidSize, width, depth, gat.Width, gat.Height)
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	for y := range int(gat.Height) {
		for x := range int(gat.Width) {
			cell := gat.GetCell(x, y)
			for corner := range cell.Heights {
				cell.Heights[corner] = -g.heights[latticeIndex(width, x, y, corner)]
			}
		}
	}
	return gat, nil
}

// latticeIndex maps a cell corner (0=SW, 1=SE, 2=NW, 3=NE) to its sample.
func latticeIndex(width, x, y, corner int) int {
	x += corner & 1
	y += corner >> 1
	return y*width + x
}

package tools

import (
	"github.com/Faultbox/midgard-editor/internal/brush"
	"github.com/Faultbox/midgard-editor/internal/terrain"
	mathx "github.com/Faultbox/midgard-editor/pkg/math"
	"github.com/chewxy/math32"
)

// SlopeParams configures the slope brush.
type SlopeParams struct {
	// Precision sets heights onto the slope plane instead of stepping.
	Precision bool `yaml:"precision" json:"precision"`
	// Lock stops the slope at the marker heights instead of extending it
	// past the markers.
	Lock       bool    `yaml:"lock" json:"lock"`
	SnapFactor float32 `yaml:"snap_factor" json:"snap_factor"`
	MinStep    float32 `yaml:"min_step" json:"min_step"`
}

// DefaultSlopeParams returns the stock slope settings.
func DefaultSlopeParams() SlopeParams {
	return SlopeParams{Lock: true, SnapFactor: 0.1, MinStep: 0.001}
}

// slope levels the footprint onto the line between the two markers. Marker
// heights come from the reference grid so they stay put while the gesture
// edits the terrain around them.
func slope(t *Tool, in Input) Edits {
	a, b, ok := t.Markers()
	if !ok {
		return Edits{}
	}
	p := t.Slope
	ws := in.Live.WorldScale()
	wy := heightScale(ws)

	ha := in.Reference.HeightAt(terrain.CoordAt(mathx.Vec3{X: a.X, Z: a.Y}, ws.ClampMin(brush.MinScale))) * wy
	hb := in.Reference.HeightAt(terrain.CoordAt(mathx.Vec3{X: b.X, Z: b.Y}, ws.ClampMin(brush.MinScale))) * wy
	if math32.IsNaN(ha) || math32.IsNaN(hb) {
		return Edits{}
	}
	if _, ok := a.Project(b, a); !ok {
		return Edits{}
	}

	mode := Adjust
	if p.Precision {
		mode = Set
	}
	e := Edits{Mode: mode}
	ly := heightScale(in.Live.LocalScale())

	for _, s := range footprint(in) {
		pos := mathx.Vec2{X: in.Contact.X + s.DX, Y: in.Contact.Z + s.DZ}
		tt, _ := a.Project(b, pos)
		if p.Lock {
			tt = mathx.Clamp(tt, 0, 1)
		}
		target := mathx.Lerp(ha, hb, tt)

		if p.Precision {
			e.add(s.Coord, target/ly)
			continue
		}

		current := in.Live.HeightAt(s.Coord) * wy
		weight := brush.Falloff(s.DX, s.DZ, in.Brush.Radius)
		adj, ok := stepToward(current, target, in.Brush.Power, weight, p.SnapFactor*in.Brush.Power, p.MinStep)
		if !ok {
			continue
		}
		e.add(s.Coord, adj/wy)
	}
	return e
}

package tools

import "github.com/Faultbox/midgard-editor/internal/brush"

// LevelParams configures the level brush.
type LevelParams struct {
	// DesiredHeight is the target plane in world units.
	DesiredHeight float32 `yaml:"desired_height" json:"desired_height"`
	// Precision snaps straight to the target instead of stepping.
	Precision bool `yaml:"precision" json:"precision"`
	// SnapFactor times the brush power is the distance at which a step
	// snaps onto the target.
	SnapFactor float32 `yaml:"snap_factor" json:"snap_factor"`
	// MinStep is the smallest step worth writing.
	MinStep float32 `yaml:"min_step" json:"min_step"`
}

// DefaultLevelParams returns the stock level thresholds.
func DefaultLevelParams() LevelParams {
	return LevelParams{SnapFactor: 0.1, MinStep: 0.001}
}

func level(p LevelParams, in Input) Edits {
	samples := footprint(in)
	if p.Precision {
		target := p.DesiredHeight / heightScale(in.Live.LocalScale())
		e := Edits{Mode: Set}
		for _, s := range samples {
			e.add(s.Coord, target)
		}
		return e
	}

	ws := heightScale(in.Live.WorldScale())
	e := Edits{Mode: Adjust}
	for _, s := range samples {
		current := in.Live.HeightAt(s.Coord) * ws
		weight := brush.Falloff(s.DX, s.DZ, in.Brush.Radius)
		adj, ok := stepToward(current, p.DesiredHeight, in.Brush.Power, weight, p.SnapFactor*in.Brush.Power, p.MinStep)
		if !ok {
			continue
		}
		e.add(s.Coord, adj/ws)
	}
	return e
}

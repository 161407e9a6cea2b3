package tools

import "github.com/Faultbox/midgard-editor/internal/brush"

// RaiseLowerParams configures the raise/lower brush.
type RaiseLowerParams struct {
	// Invert makes the primary button lower and the secondary raise.
	Invert bool `yaml:"invert" json:"invert"`
}

func raiseLower(p RaiseLowerParams, in Input) Edits {
	sign := float32(1)
	if in.Button == Secondary {
		sign = -1
	}
	if p.Invert {
		sign = -sign
	}

	e := Edits{Mode: Adjust}
	for _, s := range footprint(in) {
		// Rim samples carry no weight.
		w := brush.Falloff(s.DX, s.DZ, in.Brush.Radius)
		if w <= 0 {
			continue
		}
		e.add(s.Coord, sign*in.Brush.Power*w)
	}
	return e
}

package config

import (
	"fmt"

	"github.com/jinzhu/copier"

	"github.com/Faultbox/midgard-editor/internal/editor"
	"github.com/Faultbox/midgard-editor/internal/tools"
	mathx "github.com/Faultbox/midgard-editor/pkg/math"
)

// ApplyTool copies the configured parameters onto a tool of any kind.
func (c *Config) ApplyTool(t *tools.Tool) error {
	pairs := []struct {
		name     string
		dst, src any
	}{
		{"raise", &t.RaiseLower, &c.Tools.Raise},
		{"level", &t.Level, &c.Tools.Level},
		{"rough", &t.Rough, &c.Tools.Rough},
		{"slope", &t.Slope, &c.Tools.Slope},
	}
	for _, p := range pairs {
		if err := copier.Copy(p.dst, p.src); err != nil {
			return fmt.Errorf("applying %s settings: %w", p.name, err)
		}
	}
	return nil
}

// EditorOptions builds the controller options from the editor and brush
// sections.
func (c *Config) EditorOptions() (editor.Options, error) {
	var opts editor.Options
	if err := copier.Copy(&opts, &c.Editor); err != nil {
		return opts, fmt.Errorf("applying editor settings: %w", err)
	}
	opts.Brush = c.Brush
	return opts, nil
}

// WorldScaleVec returns the terrain world scale as a vector.
func (t TerrainConfig) WorldScaleVec() mathx.Vec3 {
	return mathx.Vec3{X: t.WorldScale[0], Y: t.WorldScale[1], Z: t.WorldScale[2]}
}

// LocalScaleVec returns the terrain local scale as a vector.
func (t TerrainConfig) LocalScaleVec() mathx.Vec3 {
	return mathx.Vec3{X: t.LocalScale[0], Y: t.LocalScale[1], Z: t.LocalScale[2]}
}

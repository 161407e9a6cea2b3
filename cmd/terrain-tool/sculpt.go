package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/midgard-editor/internal/brush"
	"github.com/Faultbox/midgard-editor/internal/config"
	"github.com/Faultbox/midgard-editor/internal/editor"
	"github.com/Faultbox/midgard-editor/internal/history"
	"github.com/Faultbox/midgard-editor/internal/tasks"
	"github.com/Faultbox/midgard-editor/internal/tools"
	mathx "github.com/Faultbox/midgard-editor/pkg/math"
)

// Script is a recorded editing session: strokes replayed in order.
type Script struct {
	Brush   *brush.State `yaml:"brush"`
	Strokes []Stroke     `yaml:"strokes"`
}

// Stroke is one gesture, or an undo/redo step when Undo or Redo is set.
type Stroke struct {
	Tool    string       `yaml:"tool"`
	Button  string       `yaml:"button"` // primary (default) or secondary
	Brush   *brush.State `yaml:"brush"`
	Points  [][3]float32 `yaml:"points"`
	Markers [][3]float32 `yaml:"markers"` // Slope markers, exactly two
	Cancel  bool         `yaml:"cancel"`  // Cancel instead of finishing

	// Tool parameters are decoded over the tool's current values, so a
	// stroke only lists what it changes.
	RaiseLower *yaml.Node `yaml:"raise"`
	Level      *yaml.Node `yaml:"level"`
	Rough      *yaml.Node `yaml:"rough"`
	Slope      *yaml.Node `yaml:"slope"`

	Undo bool `yaml:"undo"`
	Redo bool `yaml:"redo"`
}

// ErrBadStroke is returned for strokes the editor cannot replay.
var ErrBadStroke = errors.New("bad stroke")

func cmdSculpt(args []string) error {
	fs := flag.NewFlagSet("sculpt", flag.ExitOnError)
	scriptPath := fs.String("script", "", "Stroke script (YAML)")
	output := fs.String("o", "", "Output GAT path (default: overwrite input)")
	width := fs.Int("width", 64, "Cells along X when no input table is given")
	height := fs.Int("height", 64, "Cells along Y when no input table is given")
	fs.Parse(args)

	if *scriptPath == "" {
		return fmt.Errorf("usage: terrain-tool sculpt -script <strokes.yaml> [-o out.gat] [file.gat]")
	}
	input := fs.Arg(0)
	out := *output
	if out == "" {
		out = input
	}
	if out == "" {
		return fmt.Errorf("sculpt needs an input table or -o")
	}

	script, err := loadScript(*scriptPath)
	if err != nil {
		return err
	}

	g, gat, err := openTerrain(input, *width+1, *height+1, mathx.One, mathx.One)
	if err != nil {
		return err
	}

	cfg := config.Default()
	opts, err := cfg.EditorOptions()
	if err != nil {
		return err
	}
	ctrl := editor.New(g, history.NewStack(cfg.Editor.UndoDepth), tasks.Sync(), opts)
	for _, k := range tools.Kinds() {
		if err := cfg.ApplyTool(ctrl.Tool(k)); err != nil {
			return err
		}
	}

	committed := 0
	ctrl.Subscribe(func(ev editor.Event) {
		if ev.Type == editor.Committed {
			committed++
		}
	})
	if err := runScript(ctrl, script); err != nil {
		return err
	}

	if err := saveTerrain(out, g, gat); err != nil {
		return err
	}
	b := g.Bounds()
	fmt.Printf("Replayed %d strokes (%d committed) into %s\n", len(script.Strokes), committed, out)
	fmt.Printf("Height range: %.2f .. %.2f\n", b.Min[1], b.Max[1])
	return nil
}

func loadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &s, nil
}

// runScript replays every stroke through the controller.
func runScript(ctrl *editor.Controller, s *Script) error {
	if s.Brush != nil {
		ctrl.SetBrush(*s.Brush)
	}

	for i, st := range s.Strokes {
		if err := runStroke(ctrl, st); err != nil {
			return fmt.Errorf("stroke %d: %w", i+1, err)
		}
	}
	ctrl.Wait()
	return nil
}

func runStroke(ctrl *editor.Controller, st Stroke) error {
	switch {
	case st.Undo:
		return ctrl.Undo()
	case st.Redo:
		return ctrl.Redo()
	}

	if st.Tool != "" {
		kind, err := tools.ParseKind(st.Tool)
		if err != nil {
			return err
		}
		var perr error
		if err := ctrl.UpdateTool(kind, func(t *tools.Tool) { perr = applyParams(t, st) }); err != nil {
			return err
		}
		if perr != nil {
			return perr
		}
		if err := ctrl.SetTool(kind); err != nil {
			return err
		}
	}
	if st.Brush != nil {
		ctrl.SetBrush(*st.Brush)
	}
	switch len(st.Markers) {
	case 0:
	case 2:
		ctrl.SetSlopeMarkers(vec(st.Markers[0]), vec(st.Markers[1]))
	default:
		return fmt.Errorf("%w: %d slope markers, want 2", ErrBadStroke, len(st.Markers))
	}
	if len(st.Points) == 0 {
		return nil
	}

	button := tools.Primary
	if st.Button == "secondary" {
		button = tools.Secondary
	}
	if err := ctrl.OnEditStart(button, vec(st.Points[0])); err != nil {
		return err
	}
	last := len(st.Points) - 1
	for i := 1; i < last; i++ {
		if err := ctrl.OnEditUpdate(vec(st.Points[i])); err != nil {
			return err
		}
	}
	if st.Cancel {
		return ctrl.Cancel()
	}
	return ctrl.OnEditFinish(vec(st.Points[last]))
}

func applyParams(t *tools.Tool, st Stroke) error {
	params := []struct {
		node *yaml.Node
		dst  any
	}{
		{st.RaiseLower, &t.RaiseLower},
		{st.Level, &t.Level},
		{st.Rough, &t.Rough},
		{st.Slope, &t.Slope},
	}
	for _, p := range params {
		if p.node == nil {
			continue
		}
		if err := p.node.Decode(p.dst); err != nil {
			return fmt.Errorf("%w: %v", ErrBadStroke, err)
		}
	}
	return nil
}

func vec(p [3]float32) mathx.Vec3 {
	return mathx.Vec3{X: p[0], Y: p[1], Z: p[2]}
}

// Package tools implements the terrain height brushes. Each brush is a
// variant of Tool; ComputeEdits turns a brush contact into the batch of
// height writes the editor applies to the grid.
package tools

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/midgard-editor/internal/brush"
	"github.com/Faultbox/midgard-editor/internal/terrain"
	mathx "github.com/Faultbox/midgard-editor/pkg/math"
	"github.com/chewxy/math32"
)

// ErrUnknownTool is returned by ParseKind for names it does not recognise.
var ErrUnknownTool = errors.New("unknown tool")

// Kind identifies a tool variant.
type Kind int

// Tool variants.
const (
	RaiseLower Kind = iota
	Smooth
	Level
	Rough
	Slope
	Paint
	kindCount
)

var kindNames = [kindCount]string{"raise", "smooth", "level", "rough", "slope", "paint"}

// Kinds lists every tool variant.
func Kinds() []Kind {
	kinds := make([]Kind, kindCount)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// String returns the tool name used in config files and scripts.
func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind parses a tool name. "lower" is accepted for RaiseLower.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "lower" || name == "raiselower" {
		return RaiseLower, nil
	}
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTool, name)
}

// Button is the input button that started a gesture.
type Button int

// Buttons.
const (
	Primary Button = iota
	Secondary
)

// Mode tells how edit values are applied.
type Mode int

// Edit modes.
const (
	// Adjust adds the values to the current heights.
	Adjust Mode = iota
	// Set replaces the current heights.
	Set
)

// Edits is one pass worth of height writes, in local terrain units.
type Edits struct {
	Mode   Mode
	Coords []terrain.Coord
	Values []float32
}

// Len returns the number of writes.
func (e *Edits) Len() int {
	return len(e.Coords)
}

func (e *Edits) add(c terrain.Coord, v float32) {
	e.Coords = append(e.Coords, c)
	e.Values = append(e.Values, v)
}

// Input is everything a tool reads for one pass.
type Input struct {
	// Live is the grid being edited.
	Live terrain.Reader
	// Reference is the grid as it was when the gesture started. Tools that
	// do not ask for a snapshot see Live here.
	Reference terrain.Reader
	Brush     brush.State
	Contact   mathx.Vec3
	Button    Button
}

// Tool is one long-lived tool variant and the parameters it owns. Only the
// parameter block matching Kind is read.
type Tool struct {
	Kind       Kind
	RaiseLower RaiseLowerParams
	Level      LevelParams
	Rough      RoughParams
	Slope      SlopeParams

	markers    [2]mathx.Vec2
	hasMarkers bool
}

// New returns a tool of the given kind with default parameters.
func New(kind Kind) *Tool {
	return &Tool{
		Kind:  kind,
		Level: DefaultLevelParams(),
		Rough: DefaultRoughParams(),
		Slope: DefaultSlopeParams(),
	}
}

// NeedsSnapshot reports whether the tool reads Input.Reference, so the edit
// session must freeze a copy of the grid when a gesture starts.
func (t *Tool) NeedsSnapshot() bool {
	return t.Kind == Slope
}

// SetMarkers places the two slope markers (only X and Z are used).
func (t *Tool) SetMarkers(a, b mathx.Vec3) {
	t.markers = [2]mathx.Vec2{a.XZ(), b.XZ()}
	t.hasMarkers = true
}

// ClearMarkers removes the slope markers.
func (t *Tool) ClearMarkers() {
	t.hasMarkers = false
}

// Markers returns the slope markers and whether they are set.
func (t *Tool) Markers() (a, b mathx.Vec2, ok bool) {
	return t.markers[0], t.markers[1], t.hasMarkers
}

// ComputeEdits runs one pass of the tool at the contact point.
func ComputeEdits(t *Tool, in Input) Edits {
	if in.Reference == nil {
		in.Reference = in.Live
	}
	switch t.Kind {
	case RaiseLower:
		return raiseLower(t.RaiseLower, in)
	case Smooth:
		return smooth(in)
	case Level:
		return level(t.Level, in)
	case Rough:
		return rough(t.Rough, in)
	case Slope:
		return slope(t, in)
	default:
		// Paint only touches texture layers.
		return Edits{}
	}
}

// footprint returns the brush samples that address existing grid data.
func footprint(in Input) []brush.Sample {
	samples := brush.Footprint(in.Contact, in.Brush.Radius, in.Live.WorldScale())
	n := 0
	for _, s := range samples {
		if !math32.IsNaN(in.Live.HeightAt(s.Coord)) {
			samples[n] = s
			n++
		}
	}
	return samples[:n]
}

// heightScale returns the Y scale used to convert between local and world
// heights, clamped away from zero.
func heightScale(v mathx.Vec3) float32 {
	return v.ClampMin(brush.MinScale).Y
}

// stepToward computes a non-precision step of at most power*weight from
// current toward desired (both in world units). It never passes desired and
// snaps onto it once within snap. ok is false when the step is below minStep.
func stepToward(current, desired, power, weight, snap, minStep float32) (adj float32, ok bool) {
	switch {
	case current < desired:
		adj = power * weight
	case current > desired:
		adj = -power * weight
	default:
		return 0, false
	}

	if adj > 0 && current+adj > desired-snap {
		adj = desired - current
	} else if adj < 0 && current+adj < desired+snap {
		adj = desired - current
	}

	if math32.Abs(adj) < minStep {
		return 0, false
	}
	return adj, true
}

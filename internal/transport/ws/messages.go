package ws

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/Faultbox/midgard-editor/internal/brush"
	"github.com/Faultbox/midgard-editor/internal/terrain"
	"github.com/Faultbox/midgard-editor/internal/tools"
	mathx "github.com/Faultbox/midgard-editor/pkg/math"
)

var json = jsoniter.Config{
	EscapeHTML:                    false,
	SortMapKeys:                   true,
	ValidateJsonRawMessage:        true,
	ObjectFieldMustBeSimpleString: true,
	CaseSensitive:                 true,
}.Froze()

// Inbound message types.
const (
	TypeStart   = "start"
	TypeUpdate  = "update"
	TypeFinish  = "finish"
	TypeCancel  = "cancel"
	TypeTool    = "tool"
	TypeBrush   = "brush"
	TypeMarkers = "markers"
	TypeUndo    = "undo"
	TypeRedo    = "redo"
)

// Outbound message types.
const (
	TypeCommitted = "committed"
	TypeState     = "state"
	TypeError     = "error"
)

// Envelope wraps every message in both directions.
type Envelope struct {
	Type string              `json:"type"`
	Data jsoniter.RawMessage `json:"data,omitempty"`
}

// Vec3 is a world position on the wire.
type Vec3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

func (v Vec3) vec() mathx.Vec3 {
	return mathx.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

// PointData carries the contact point of start, update and finish. When Ray
// is set the point is picked from the terrain and Point is ignored. Button
// is only read on start ("primary" or "secondary").
type PointData struct {
	Point  Vec3     `json:"point"`
	Ray    *RayData `json:"ray,omitempty"`
	Button string   `json:"button,omitempty"`
}

// RayData is a view ray; Direction need not be normalized.
type RayData struct {
	Origin    Vec3 `json:"origin"`
	Direction Vec3 `json:"direction"`
}

// ToolData selects a tool and optionally replaces its parameters.
type ToolData struct {
	Tool       string                  `json:"tool"`
	RaiseLower *tools.RaiseLowerParams `json:"raise,omitempty"`
	Level      *tools.LevelParams      `json:"level,omitempty"`
	Rough      *tools.RoughParams      `json:"rough,omitempty"`
	Slope      *tools.SlopeParams      `json:"slope,omitempty"`
}

// MarkersData places the slope markers.
type MarkersData struct {
	A Vec3 `json:"a"`
	B Vec3 `json:"b"`
}

// CommittedData reports an operation that reached the history.
type CommittedData struct {
	Tool   string         `json:"tool"`
	Coords int            `json:"coords"`
	Bounds terrain.Bounds `json:"bounds"`
}

// StateData is the controller state sent after every command.
type StateData struct {
	Tool   string      `json:"tool"`
	Brush  brush.State `json:"brush"`
	Active bool        `json:"active"`
	Passes int         `json:"passes"`
	// Step is set after an undo or redo.
	Step string `json:"step,omitempty"`
}

// ErrorData reports a rejected command.
type ErrorData struct {
	Request string `json:"request,omitempty"`
	Message string `json:"message"`
}

func encode(typ string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: typ, Data: raw})
}

func parseButton(name string) tools.Button {
	if name == "secondary" {
		return tools.Secondary
	}
	return tools.Primary
}

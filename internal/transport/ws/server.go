// Package ws bridges a remote editor front end to the gesture controller
// over a websocket. Each inbound message maps to one controller call; history
// events are broadcast to every connected client.
package ws

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-editor/internal/editor"
	"github.com/Faultbox/midgard-editor/internal/engine/picking"
	"github.com/Faultbox/midgard-editor/internal/tools"
	mathx "github.com/Faultbox/midgard-editor/pkg/math"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 5 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 8) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 4096
	// Outbound messages buffered per client before it counts as stalled.
	sendBuffer = 64
)

// Ray marching parameters for picked contact points, in world units.
const (
	pickDistance = 4096
	pickStep     = 0.25
)

var (
	// ErrUnknownMessage is reported for unrecognised inbound types.
	ErrUnknownMessage = errors.New("unknown message type")
	// ErrNoContact is reported when a pick ray misses the terrain.
	ErrNoContact = errors.New("ray does not hit the terrain")
)

// Server is an http.Handler that upgrades requests to editor sessions.
type Server struct {
	ctrl     *editor.Controller
	terrain  picking.Surface
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	// owner is the client whose gesture is open.
	owner *client
}

// NewServer returns a server driving ctrl. The terrain surface resolves pick
// rays and supplies the bounds sent with commit reports. NewServer subscribes
// to the controller's history events.
func NewServer(ctrl *editor.Controller, terrain picking.Surface, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		ctrl:    ctrl,
		terrain: terrain,
		log:     log,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: time.Second,
			ReadBufferSize:   maxMessageSize,
			WriteBufferSize:  4096,
			CheckOrigin:      func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
	ctrl.Subscribe(s.onEvent)
	return s
}

// ServeHTTP upgrades the connection and serves it until it closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newClient(s, conn)
	s.mu.Lock()
	s.clients[c] = struct{}{}
	n := len(s.clients)
	s.mu.Unlock()
	s.log.Info("client connected", zap.String("remote", conn.RemoteAddr().String()), zap.Int("clients", n))

	go c.writePump()
	c.readPump()
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Close disconnects every client.
func (s *Server) Close() {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.destroy()
	}
}

func (s *Server) remove(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
}

// release cancels the gesture c left open.
func (s *Server) release(c *client) {
	s.mu.Lock()
	owned := s.owner == c
	if owned {
		s.owner = nil
	}
	s.mu.Unlock()

	if !owned {
		return
	}
	if err := s.ctrl.Cancel(); err != nil {
		s.log.Debug("abandoned gesture already closed", zap.Error(err))
		return
	}
	s.log.Info("abandoned gesture cancelled", zap.String("remote", c.conn.RemoteAddr().String()))
}

func (s *Server) broadcast(typ string, data any) {
	msg, err := encode(typ, data)
	if err != nil {
		s.log.Error("encode broadcast", zap.String("type", typ), zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.send(msg)
	}
}

func (s *Server) onEvent(ev editor.Event) {
	switch {
	case ev.Err != nil:
		s.broadcast(TypeError, ErrorData{Request: stepRequest(ev.Type), Message: ev.Err.Error()})
	case ev.Type == editor.Committed:
		s.broadcast(TypeCommitted, CommittedData{
			Tool:   ev.Tool.String(),
			Coords: ev.Op.Len(),
			Bounds: s.terrain.Bounds(),
		})
	default:
		state := s.state()
		state.Step = ev.Type.String()
		s.broadcast(TypeState, state)
	}
}

func stepRequest(t editor.EventType) string {
	if t == editor.Redone {
		return TypeRedo
	}
	return TypeUndo
}

func (s *Server) state() StateData {
	st := s.ctrl.Status()
	return StateData{
		Tool:   st.Tool.String(),
		Brush:  st.Brush,
		Active: st.Active,
		Passes: st.Passes,
	}
}

// handle runs one inbound message from c against the controller and tracks
// which client owns the open gesture.
func (s *Server) handle(c *client, env Envelope) error {
	err := s.dispatch(env)
	active := s.ctrl.Status().Active

	s.mu.Lock()
	switch {
	case !active:
		s.owner = nil
	case env.Type == TypeStart && err == nil:
		s.owner = c
	}
	s.mu.Unlock()
	return err
}

func (s *Server) dispatch(env Envelope) error {
	switch env.Type {
	case TypeStart, TypeUpdate, TypeFinish:
		var d PointData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return fmt.Errorf("decode %s: %w", env.Type, err)
		}
		point, err := s.contact(d)
		if err != nil {
			return err
		}
		switch env.Type {
		case TypeStart:
			return s.ctrl.OnEditStart(parseButton(d.Button), point)
		case TypeUpdate:
			return s.ctrl.OnEditUpdate(point)
		default:
			return s.ctrl.OnEditFinish(point)
		}

	case TypeCancel:
		return s.ctrl.Cancel()

	case TypeTool:
		var d ToolData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return fmt.Errorf("decode tool: %w", err)
		}
		kind, err := tools.ParseKind(d.Tool)
		if err != nil {
			return err
		}
		if err := s.ctrl.UpdateTool(kind, func(t *tools.Tool) {
			if d.RaiseLower != nil {
				t.RaiseLower = *d.RaiseLower
			}
			if d.Level != nil {
				t.Level = *d.Level
			}
			if d.Rough != nil {
				t.Rough = *d.Rough
			}
			if d.Slope != nil {
				t.Slope = *d.Slope
			}
		}); err != nil {
			return err
		}
		return s.ctrl.SetTool(kind)

	case TypeBrush:
		b := s.ctrl.Brush()
		if err := json.Unmarshal(env.Data, &b); err != nil {
			return fmt.Errorf("decode brush: %w", err)
		}
		s.ctrl.SetBrush(b)
		return nil

	case TypeMarkers:
		var d MarkersData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return fmt.Errorf("decode markers: %w", err)
		}
		s.ctrl.SetSlopeMarkers(d.A.vec(), d.B.vec())
		return nil

	case TypeUndo:
		return s.ctrl.Undo()

	case TypeRedo:
		return s.ctrl.Redo()

	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessage, env.Type)
	}
}

// contact returns the brush contact of a point message, picking it from the
// terrain when the client sent a view ray instead of a position.
func (s *Server) contact(d PointData) (mathx.Vec3, error) {
	if d.Ray == nil {
		return d.Point.vec(), nil
	}
	ray := picking.NewRay(d.Ray.Origin.vec(), d.Ray.Direction.vec())
	p, ok := ray.IntersectTerrain(s.terrain, pickDistance, pickStep)
	if !ok {
		return mathx.Vec3{}, ErrNoContact
	}
	return p, nil
}

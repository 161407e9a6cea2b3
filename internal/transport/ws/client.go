package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// client is a middleman between one websocket connection and the server.
type client struct {
	server   *Server
	conn     *websocket.Conn
	outbound chan []byte
	once     sync.Once
	done     chan struct{}
}

func newClient(s *Server, conn *websocket.Conn) *client {
	return &client{
		server:   s,
		conn:     conn,
		outbound: make(chan []byte, sendBuffer),
		done:     make(chan struct{}),
	}
}

// send queues msg without blocking. A client that cannot keep up is dropped.
func (c *client) send(msg []byte) {
	select {
	case <-c.done:
	case c.outbound <- msg:
	default:
		c.server.log.Warn("client not responsive, dropping", zap.String("remote", c.conn.RemoteAddr().String()))
		go c.destroy()
	}
}

func (c *client) reply(typ string, data any) {
	msg, err := encode(typ, data)
	if err != nil {
		c.server.log.Error("encode reply", zap.String("type", typ), zap.Error(err))
		return
	}
	c.send(msg)
}

func (c *client) destroy() {
	c.once.Do(func() {
		close(c.done)
		c.server.release(c)
		c.server.remove(c)
		_ = c.conn.Close()
		c.server.log.Info("client disconnected", zap.String("remote", c.conn.RemoteAddr().String()))
	})
}

func (c *client) readPump() {
	defer c.destroy()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.server.log.Warn("websocket closed", zap.Error(err))
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.reply(TypeError, ErrorData{Message: "malformed message: " + err.Error()})
			continue
		}
		if err := c.server.handle(c, env); err != nil {
			c.server.log.Debug("request rejected", zap.String("type", env.Type), zap.Error(err))
			c.reply(TypeError, ErrorData{Request: env.Type, Message: err.Error()})
			continue
		}
		c.reply(TypeState, c.server.state())
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.destroy()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg := <-c.outbound:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

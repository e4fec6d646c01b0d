package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
	sendBuffer     = 64
)

// invokeEnvelope is one request from a surface.
type invokeEnvelope struct {
	ID      string          `json:"id"`
	Channel string          `json:"channel"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// resultEnvelope is the host's reply to an invoke.
type resultEnvelope struct {
	ID      string      `json:"id"`
	OK      bool        `json:"ok"`
	Payload interface{} `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// eventEnvelope is a fire-and-forget host→surface push.
type eventEnvelope struct {
	Channel string      `json:"channel"`
	Payload interface{} `json:"payload,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Only surfaces served from loopback may cross the boundary.
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return false
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		host := u.Hostname()
		return host == "127.0.0.1" || host == "localhost"
	},
}

// surfaceConn is one connected surface socket.
type surfaceConn struct {
	gateway *Gateway
	ws      *websocket.Conn
	surface string
	out     chan []byte
	closed  chan struct{}
}

// Handler returns the /ipc WebSocket endpoint. Each surface connects once,
// identifying itself with a ?surface= query parameter.
func (g *Gateway) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			g.logger.Warn().Err(err).Msg("surface socket upgrade failed")
			return
		}

		c := &surfaceConn{
			gateway: g,
			ws:      ws,
			surface: r.URL.Query().Get("surface"),
			out:     make(chan []byte, sendBuffer),
			closed:  make(chan struct{}),
		}

		g.connMu.Lock()
		g.conns[c] = struct{}{}
		g.connMu.Unlock()

		g.logger.Debug().Str("surface", c.surface).Msg("surface connected to gateway")

		go c.writeLoop()
		go c.readLoop()
	})
}

func (c *surfaceConn) readLoop() {
	defer c.teardown()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}

		var req invokeEnvelope
		if err := json.Unmarshal(data, &req); err != nil {
			c.gateway.logger.Warn().Str("surface", c.surface).Err(err).Msg("malformed invoke envelope")
			continue
		}

		go c.dispatch(req)
	}
}

func (c *surfaceConn) dispatch(req invokeEnvelope) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := c.gateway.Invoke(ctx, req.Channel, req.Payload)

	reply := resultEnvelope{ID: req.ID, OK: err == nil, Payload: result}
	if err != nil {
		reply.Error = err.Error()
	}

	data, err := json.Marshal(reply)
	if err != nil {
		c.gateway.logger.Error().Err(err).Str("channel", req.Channel).Msg("failed to marshal invoke reply")
		return
	}
	c.send(data)
}

func (c *surfaceConn) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case data := <-c.out:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closed:
			return
		}
	}
}

// send queues an outbound frame. Slow surfaces are dropped rather than
// allowed to block the host.
func (c *surfaceConn) send(data []byte) {
	select {
	case c.out <- data:
	default:
		c.gateway.logger.Warn().Str("surface", c.surface).Msg("surface socket backlogged, dropping frame")
	}
}

func (c *surfaceConn) teardown() {
	c.gateway.connMu.Lock()
	delete(c.gateway.conns, c)
	c.gateway.connMu.Unlock()

	close(c.closed)
	_ = c.ws.Close()

	c.gateway.logger.Debug().Str("surface", c.surface).Msg("surface disconnected from gateway")

	c.gateway.mu.RLock()
	onDisconnect := c.gateway.onDisconnect
	c.gateway.mu.RUnlock()
	if onDisconnect != nil {
		onDisconnect(c.surface)
	}
}

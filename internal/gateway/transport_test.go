package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTransportServer(t *testing.T, g *Gateway) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(g.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func dialSurface(t *testing.T, srv *httptest.Server, surface, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?surface=" + surface
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	return websocket.DefaultDialer.Dial(wsURL, header)
}

func waitForConns(t *testing.T, g *Gateway, want int) {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		g.connMu.Lock()
		n := len(g.conns)
		g.connMu.Unlock()
		if n == want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("gateway has %d connections, want %d", n, want)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestHandlerRejectsForeignOrigin(t *testing.T) {
	g := newTestGateway(&fakeOps{})
	srv := newTransportServer(t, g)

	for _, origin := range []string{
		"http://evil.example",
		"http://attacker.local:8080",
		"https://127.0.0.1.evil.example",
		"", // browsers always send an origin; its absence means no browser
		"http://[::1]:3000",
	} {
		ws, resp, err := dialSurface(t, srv, "overlay", origin)
		if err == nil {
			ws.Close()
			t.Errorf("dial with origin %q succeeded, want handshake rejection", origin)
			continue
		}
		if !errors.Is(err, websocket.ErrBadHandshake) {
			t.Errorf("dial with origin %q error = %v, want ErrBadHandshake", origin, err)
		}
		if resp != nil && resp.StatusCode != http.StatusForbidden {
			t.Errorf("dial with origin %q status = %d, want %d", origin, resp.StatusCode, http.StatusForbidden)
		}
	}
}

func TestHandlerInvokeRoundTrip(t *testing.T) {
	ops := &fakeOps{backendURL: "http://127.0.0.1:43110"}
	g := newTestGateway(ops)
	srv := newTransportServer(t, g)

	ws, _, err := dialSurface(t, srv, "primary", "http://127.0.0.1:34115")
	if err != nil {
		t.Fatalf("dial error = %v", err)
	}
	defer ws.Close()

	req := invokeEnvelope{ID: "req-1", Channel: ChanGetBackendURL}
	if err := ws.WriteJSON(req); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	var reply struct {
		ID      string      `json:"id"`
		OK      bool        `json:"ok"`
		Payload interface{} `json:"payload"`
		Error   string      `json:"error"`
	}
	if err := ws.ReadJSON(&reply); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if reply.ID != "req-1" || !reply.OK {
		t.Fatalf("reply = %+v, want ok reply for req-1", reply)
	}
	if reply.Payload != "http://127.0.0.1:43110" {
		t.Errorf("payload = %v, want backend base url", reply.Payload)
	}

	// A channel outside the allowlist comes back as a failed result,
	// never a dropped frame.
	if err := ws.WriteJSON(invokeEnvelope{ID: "req-2", Channel: "exec-shell"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if err := ws.ReadJSON(&reply); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if reply.ID != "req-2" || reply.OK {
		t.Fatalf("reply = %+v, want rejection for req-2", reply)
	}
	if reply.Error == "" {
		t.Error("rejection carried no error message")
	}
}

func TestHandlerDeliversBroadcasts(t *testing.T) {
	g := newTestGateway(&fakeOps{})
	srv := newTransportServer(t, g)

	ws, _, err := dialSurface(t, srv, "overlay", "http://localhost:34115")
	if err != nil {
		t.Fatalf("dial error = %v", err)
	}
	defer ws.Close()
	waitForConns(t, g, 1)

	if err := g.Broadcast(EventPauseStateChanged, true); err != nil {
		t.Fatalf("Broadcast() error = %v", err)
	}

	_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	var event struct {
		Channel string          `json:"channel"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := ws.ReadJSON(&event); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if event.Channel != EventPauseStateChanged {
		t.Errorf("channel = %q, want %q", event.Channel, EventPauseStateChanged)
	}
	if string(event.Payload) != "true" {
		t.Errorf("payload = %s, want true", event.Payload)
	}
}

func TestHandlerDisconnectFiresCallback(t *testing.T) {
	g := newTestGateway(&fakeOps{})
	dropped := make(chan string, 1)
	g.SetDisconnectHandler(func(surface string) { dropped <- surface })
	srv := newTransportServer(t, g)

	ws, _, err := dialSurface(t, srv, "overlay", "http://127.0.0.1:34115")
	if err != nil {
		t.Fatalf("dial error = %v", err)
	}
	waitForConns(t, g, 1)
	ws.Close()

	select {
	case surface := <-dropped:
		if surface != "overlay" {
			t.Errorf("disconnect surface = %q, want overlay", surface)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("disconnect callback never fired")
	}
	waitForConns(t, g, 0)
}

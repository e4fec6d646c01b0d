// Package gateway validates and routes every privileged call and event
// between untrusted UI surfaces and host capabilities. The registry built
// at startup is the only authority: a channel absent from it is rejected
// no matter what the transport would otherwise deliver.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// ErrChannelRejected is returned for any call or event whose channel is not
// in the corresponding allowlist.
var ErrChannelRejected = errors.New("channel not allowlisted")

// InvokeHandler services one request/response channel. The payload is the
// raw JSON sent by the surface; the returned value is marshaled back.
type InvokeHandler func(ctx context.Context, payload json.RawMessage) (interface{}, error)

// Gateway holds the two fixed allowlists: invoke channels (request →
// response) and event channels (host → surface push). Both are populated
// during startup and frozen before any surface connects.
type Gateway struct {
	logger zerolog.Logger

	mu      sync.RWMutex
	invokes map[string]InvokeHandler
	events  map[string]struct{}
	frozen  bool

	connMu sync.RWMutex
	conns  map[*surfaceConn]struct{}

	onDisconnect func(surface string)
}

// New creates an empty, unfrozen gateway.
func New(logger zerolog.Logger) *Gateway {
	return &Gateway{
		logger:  logger,
		invokes: make(map[string]InvokeHandler),
		events:  make(map[string]struct{}),
		conns:   make(map[*surfaceConn]struct{}),
	}
}

// RegisterInvoke adds a request/response channel. Registration is a
// startup-time act: calling it after Freeze, or reusing a name, panics.
func (g *Gateway) RegisterInvoke(channel string, handler InvokeHandler) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.frozen {
		panic(fmt.Sprintf("gateway: invoke channel %q registered after freeze", channel))
	}
	if _, dup := g.invokes[channel]; dup {
		panic(fmt.Sprintf("gateway: invoke channel %q registered twice", channel))
	}
	if _, dup := g.events[channel]; dup {
		panic(fmt.Sprintf("gateway: channel %q already registered as event", channel))
	}
	g.invokes[channel] = handler
}

// RegisterEvent adds a host→surface push channel. Same startup-time rules
// as RegisterInvoke.
func (g *Gateway) RegisterEvent(channel string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.frozen {
		panic(fmt.Sprintf("gateway: event channel %q registered after freeze", channel))
	}
	if _, dup := g.events[channel]; dup {
		panic(fmt.Sprintf("gateway: event channel %q registered twice", channel))
	}
	if _, dup := g.invokes[channel]; dup {
		panic(fmt.Sprintf("gateway: channel %q already registered as invoke", channel))
	}
	g.events[channel] = struct{}{}
}

// SetDisconnectHandler installs a callback fired when a surface socket
// drops, carrying the surface identifier the socket registered with.
func (g *Gateway) SetDisconnectHandler(fn func(surface string)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onDisconnect = fn
}

// Freeze closes both allowlists. Must be called before serving surfaces.
func (g *Gateway) Freeze() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.frozen = true
	g.logger.Debug().
		Int("invoke_channels", len(g.invokes)).
		Int("event_channels", len(g.events)).
		Msg("gateway allowlists frozen")
}

// Invoke validates the channel against the invoke allowlist and only then
// delegates to the registered handler.
func (g *Gateway) Invoke(ctx context.Context, channel string, payload json.RawMessage) (interface{}, error) {
	g.mu.RLock()
	handler, ok := g.invokes[channel]
	g.mu.RUnlock()

	if !ok {
		g.logger.Warn().Str("channel", channel).Msg("rejected invoke on unregistered channel")
		return nil, fmt.Errorf("%w: invoke %q", ErrChannelRejected, channel)
	}
	return handler(ctx, payload)
}

// Broadcast pushes an event to every connected surface. Events on channels
// outside the event allowlist are refused.
func (g *Gateway) Broadcast(channel string, payload interface{}) error {
	g.mu.RLock()
	_, ok := g.events[channel]
	g.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: event %q", ErrChannelRejected, channel)
	}

	data, err := json.Marshal(eventEnvelope{Channel: channel, Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal event %q: %w", channel, err)
	}

	g.connMu.RLock()
	defer g.connMu.RUnlock()
	for c := range g.conns {
		c.send(data)
	}
	return nil
}

// InvokeChannels returns the invoke allowlist, sorted, for diagnostics.
func (g *Gateway) InvokeChannels() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	names := make([]string, 0, len(g.invokes))
	for name := range g.invokes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EventChannels returns the event allowlist, sorted, for diagnostics.
func (g *Gateway) EventChannels() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	names := make([]string, 0, len(g.events))
	for name := range g.events {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"
)

// Invoke channels (surface → host, request/response).
const (
	ChanGetBackendURL          = "get-backend-url"
	ChanShowPrimaryWindow      = "show-primary-window"
	ChanShowOverlayWindow      = "show-overlay-window"
	ChanHideOverlayWindow      = "hide-overlay-window"
	ChanSetOverlayClickThrough = "set-overlay-click-through"
	ChanReportRendererError    = "report-renderer-error"
	ChanSelectFile             = "select-file"
	ChanSelectDirectory        = "select-directory"
	ChanOpenExternal           = "open-external"
)

// Event channels (host → surface, fire-and-forget).
const (
	EventPauseStateChanged = "pause-state-changed"
	EventNavigateTo        = "navigate-to"
	EventAssetsChanged     = "assets-changed"
)

// HostOps is the closed set of host capabilities a surface may reach.
// Implemented by the lifecycle coordinator.
type HostOps interface {
	BackendURL() string
	ShowPrimary() error
	ShowOverlay() error
	HideOverlay() error
	SetOverlayClickThrough(enabled bool) error
	OpenExternal(rawURL string) error
}

// FileDialogOptions narrows a native file/directory selection request.
type FileDialogOptions struct {
	Title       string   `json:"title,omitempty"`
	DefaultPath string   `json:"defaultPath,omitempty"`
	Filters     []string `json:"filters,omitempty"`
}

// DialogService opens native selection dialogs on behalf of surfaces.
type DialogService interface {
	SelectFile(opts FileDialogOptions) (path string, cancelled bool, err error)
	SelectDirectory(opts FileDialogOptions) (path string, cancelled bool, err error)
}

// RendererError is a structured error report from a surface.
type RendererError struct {
	Surface string `json:"surface"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
	URL     string `json:"url,omitempty"`
}

type selectionResult struct {
	Path      string `json:"path,omitempty"`
	Cancelled bool   `json:"cancelled"`
}

// RegisterHostChannels populates both allowlists with every capability the
// host exposes. This is the single place a channel name is granted meaning;
// call Freeze immediately after.
func RegisterHostChannels(g *Gateway, ops HostOps, dialogs DialogService, logger zerolog.Logger) {
	g.RegisterInvoke(ChanGetBackendURL, func(ctx context.Context, _ json.RawMessage) (interface{}, error) {
		return ops.BackendURL(), nil
	})

	g.RegisterInvoke(ChanShowPrimaryWindow, func(ctx context.Context, _ json.RawMessage) (interface{}, error) {
		return nil, ops.ShowPrimary()
	})

	g.RegisterInvoke(ChanShowOverlayWindow, func(ctx context.Context, _ json.RawMessage) (interface{}, error) {
		return nil, ops.ShowOverlay()
	})

	g.RegisterInvoke(ChanHideOverlayWindow, func(ctx context.Context, _ json.RawMessage) (interface{}, error) {
		return nil, ops.HideOverlay()
	})

	g.RegisterInvoke(ChanSetOverlayClickThrough, func(ctx context.Context, payload json.RawMessage) (interface{}, error) {
		enabled, err := decodeBool(payload)
		if err != nil {
			return nil, err
		}
		return nil, ops.SetOverlayClickThrough(enabled)
	})

	g.RegisterInvoke(ChanOpenExternal, func(ctx context.Context, payload json.RawMessage) (interface{}, error) {
		var raw string
		if err := decodeStrict(payload, &raw); err != nil {
			return nil, fmt.Errorf("expected string payload: %w", err)
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return nil, fmt.Errorf("refusing to open non-http(s) url %q", raw)
		}
		return nil, ops.OpenExternal(u.String())
	})

	g.RegisterInvoke(ChanReportRendererError, func(ctx context.Context, payload json.RawMessage) (interface{}, error) {
		var report RendererError
		if err := decodeStrict(payload, &report); err != nil {
			return nil, fmt.Errorf("malformed renderer error report: %w", err)
		}
		logger.Error().
			Str("component", "renderer").
			Str("surface", report.Surface).
			Str("url", report.URL).
			Str("stack", report.Stack).
			Msg(report.Message)
		return true, nil
	})

	g.RegisterInvoke(ChanSelectFile, func(ctx context.Context, payload json.RawMessage) (interface{}, error) {
		opts, err := decodeDialogOptions(payload)
		if err != nil {
			return nil, err
		}
		path, cancelled, err := dialogs.SelectFile(opts)
		if err != nil {
			return nil, err
		}
		return selectionResult{Path: path, Cancelled: cancelled}, nil
	})

	g.RegisterInvoke(ChanSelectDirectory, func(ctx context.Context, payload json.RawMessage) (interface{}, error) {
		opts, err := decodeDialogOptions(payload)
		if err != nil {
			return nil, err
		}
		path, cancelled, err := dialogs.SelectDirectory(opts)
		if err != nil {
			return nil, err
		}
		return selectionResult{Path: path, Cancelled: cancelled}, nil
	})

	g.RegisterEvent(EventPauseStateChanged)
	g.RegisterEvent(EventNavigateTo)
	g.RegisterEvent(EventAssetsChanged)
}

// decodeBool accepts exactly a JSON boolean. Anything else is rejected
// before any host capability is touched.
func decodeBool(payload json.RawMessage) (bool, error) {
	var v bool
	if err := decodeStrict(payload, &v); err != nil {
		return false, fmt.Errorf("expected boolean payload: %w", err)
	}
	return v, nil
}

func decodeDialogOptions(payload json.RawMessage) (FileDialogOptions, error) {
	var opts FileDialogOptions
	if len(payload) == 0 {
		return opts, nil
	}
	if err := decodeStrict(payload, &opts); err != nil {
		return opts, fmt.Errorf("malformed dialog options: %w", err)
	}
	return opts, nil
}

// decodeStrict unmarshals payload into v, rejecting unknown fields and
// trailing garbage.
func decodeStrict(payload json.RawMessage, v interface{}) error {
	if len(payload) == 0 {
		return fmt.Errorf("missing payload")
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("trailing data after payload")
	}
	return nil
}

// Package content serves surface assets over loopback HTTP and hosts the
// gateway socket. Every asset response carries the owning surface kind's
// security headers.
package content

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/deskmate-io/deskmate/internal/models"
	"github.com/deskmate-io/deskmate/internal/surfaces"
)

// Server is the host's loopback content server. Surfaces load their
// documents from it; it also mounts the gateway's /ipc endpoint.
type Server struct {
	logger   zerolog.Logger
	settings *models.Settings
	ipc      http.Handler

	ln  net.Listener
	srv *http.Server
}

// NewServer creates a content server. ipc is mounted at /ipc.
func NewServer(settings *models.Settings, ipc http.Handler, logger zerolog.Logger) *Server {
	return &Server{
		logger:   logger,
		settings: settings,
		ipc:      ipc,
	}
}

// Start binds a loopback port and begins serving. The chosen port is
// available through BaseURL afterwards.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to bind content server: %w", err)
	}
	s.ln = ln

	mux := http.NewServeMux()
	mux.Handle("/ipc", s.ipc)

	for _, kind := range []surfaces.Kind{surfaces.KindPrimary, surfaces.KindOverlay} {
		handler, err := s.assetHandler(kind)
		if err != nil {
			ln.Close()
			return err
		}
		mount := "/" + string(kind) + "/"
		mux.Handle(mount, secureHeaders(surfaces.PolicyFor(kind), http.StripPrefix(strings.TrimSuffix(mount, "/"), handler)))
	}

	s.srv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("content server stopped unexpectedly")
		}
	}()

	s.logger.Info().Str("addr", s.BaseURL()).Bool("dev", s.settings.RunMode() == models.RunModeDev).Msg("content server listening")
	return nil
}

// BaseURL returns the server's loopback base URL. Only valid after Start.
func (s *Server) BaseURL() string {
	return "http://" + s.ln.Addr().String()
}

// URLFor returns the document URL a surface of the given kind loads.
func (s *Server) URLFor(kind surfaces.Kind) string {
	return s.BaseURL() + "/" + string(kind) + "/"
}

// Shutdown stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// assetHandler picks the asset source for a kind. In dev mode documents
// are proxied to the frontend dev server so hot reload keeps working; in
// packaged mode they come from the bundled asset tree.
func (s *Server) assetHandler(kind surfaces.Kind) (http.Handler, error) {
	if s.settings.RunMode() == models.RunModeDev {
		target, err := url.Parse(s.settings.Dev.ServerURL)
		if err != nil {
			return nil, fmt.Errorf("invalid dev server url %q: %w", s.settings.Dev.ServerURL, err)
		}
		proxy := httputil.NewSingleHostReverseProxy(target)
		proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			s.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("dev server proxy error")
			http.Error(w, "dev server unreachable", http.StatusBadGateway)
		}
		return proxy, nil
	}

	root, err := s.assetsRoot(kind)
	if err != nil {
		return nil, err
	}
	return spaHandler(root), nil
}

// assetsRoot resolves the packaged asset directory for a kind: an explicit
// override from settings, otherwise ui/<kind> next to the host binary.
func (s *Server) assetsRoot(kind surfaces.Kind) (string, error) {
	if s.settings.Dev.AssetsDir != "" {
		return filepath.Join(s.settings.Dev.AssetsDir, string(kind)), nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate host binary: %w", err)
	}
	return filepath.Join(filepath.Dir(exe), "ui", string(kind)), nil
}

// spaHandler serves a static tree, falling back to index.html for
// client-side routes.
func spaHandler(root string) http.Handler {
	fs := http.FileServer(http.Dir(root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := strings.TrimPrefix(r.URL.Path, "/")
		if p != "" {
			if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(p))); err == nil {
				fs.ServeHTTP(w, r)
				return
			}
		}
		http.ServeFile(w, r, filepath.Join(root, "index.html"))
	})
}

// secureHeaders stamps the kind's CSP and the fixed hardening headers on
// every response.
func secureHeaders(policy surfaces.SecurityPolicy, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", policy.ContentSecurityPolicy)
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

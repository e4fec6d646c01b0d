package content

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/deskmate-io/deskmate/internal/models"
	"github.com/deskmate-io/deskmate/internal/surfaces"
)

func writeAssets(t *testing.T, root string, kind surfaces.Kind, files map[string]string) {
	t.Helper()
	dir := filepath.Join(root, string(kind))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func startPackagedServer(t *testing.T) (*Server, string) {
	t.Helper()

	assets := t.TempDir()
	writeAssets(t, assets, surfaces.KindPrimary, map[string]string{
		"index.html": "<html>primary</html>",
		"app.js":     "console.log('primary')",
	})
	writeAssets(t, assets, surfaces.KindOverlay, map[string]string{
		"index.html": "<html>overlay</html>",
	})

	settings := models.NewSettings()
	settings.Dev.AssetsDir = assets

	ipc := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusSwitchingProtocols)
	})

	srv := NewServer(settings, ipc, zerolog.Nop())
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv, srv.BaseURL()
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServesPerKindDocuments(t *testing.T) {
	srv, _ := startPackagedServer(t)

	resp := get(t, srv.URLFor(surfaces.KindPrimary))
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "primary") {
		t.Errorf("primary document = %q", body)
	}

	resp = get(t, srv.URLFor(surfaces.KindOverlay))
	body, _ = io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "overlay") {
		t.Errorf("overlay document = %q", body)
	}
}

func TestAssetResponsesCarrySecurityHeaders(t *testing.T) {
	srv, _ := startPackagedServer(t)

	for _, kind := range []surfaces.Kind{surfaces.KindPrimary, surfaces.KindOverlay} {
		resp := get(t, srv.URLFor(kind))

		csp := resp.Header.Get("Content-Security-Policy")
		if csp != surfaces.PolicyFor(kind).ContentSecurityPolicy {
			t.Errorf("%s CSP header = %q, want the kind's policy", kind, csp)
		}
		if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
			t.Errorf("%s missing nosniff header", kind)
		}
		if resp.Header.Get("X-Frame-Options") != "DENY" {
			t.Errorf("%s missing frame-deny header", kind)
		}
	}
}

func TestPrimaryAndOverlayGetDifferentCSP(t *testing.T) {
	srv, _ := startPackagedServer(t)

	primary := get(t, srv.URLFor(surfaces.KindPrimary)).Header.Get("Content-Security-Policy")
	overlay := get(t, srv.URLFor(surfaces.KindOverlay)).Header.Get("Content-Security-Policy")
	if primary == overlay {
		t.Error("primary and overlay share one CSP, want per-kind policies")
	}
	if !strings.Contains(primary, "fonts.googleapis.com") {
		t.Error("primary CSP lost its font sources")
	}
}

func TestSPAFallbackServesIndex(t *testing.T) {
	srv, base := startPackagedServer(t)
	_ = srv

	resp := get(t, base+"/primary/settings/advanced")
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "primary") {
		t.Errorf("client-side route did not fall back to index.html: %q", body)
	}
}

func TestStaticFilesServedDirectly(t *testing.T) {
	srv, base := startPackagedServer(t)
	_ = srv

	resp := get(t, base+"/primary/app.js")
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "console.log") {
		t.Errorf("app.js body = %q", body)
	}
}

func TestDevModeProxiesToDevServer(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("vite:" + r.URL.Path))
	}))
	t.Cleanup(upstream.Close)

	settings := models.NewSettings()
	settings.Dev.ServerURL = upstream.URL

	srv := NewServer(settings, http.NotFoundHandler(), zerolog.Nop())
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	resp := get(t, srv.BaseURL()+"/overlay/src/main.tsx")
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "vite:/src/main.tsx" {
		t.Errorf("proxied body = %q", body)
	}
	// Proxied responses are still stamped with the kind's CSP.
	if got := resp.Header.Get("Content-Security-Policy"); got != surfaces.PolicyFor(surfaces.KindOverlay).ContentSecurityPolicy {
		t.Errorf("proxied CSP = %q", got)
	}
}

func TestDevModeReportsUnreachableDevServer(t *testing.T) {
	settings := models.NewSettings()
	settings.Dev.ServerURL = "http://127.0.0.1:1" // nothing listens here

	srv := NewServer(settings, http.NotFoundHandler(), zerolog.Nop())
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	resp := get(t, srv.URLFor(surfaces.KindPrimary))
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
}

package updater

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseSemver(t *testing.T) {
	tests := []struct {
		in   string
		want Semver
	}{
		{"1.2.3", Semver{Major: 1, Minor: 2, Patch: 3}},
		{"v0.10.14", Semver{Major: 0, Minor: 10, Patch: 14}},
		{"2.0.0-rc.1", Semver{Major: 2, Minor: 0, Patch: 0, PreRelease: "rc.1"}},
	}
	for _, tt := range tests {
		got, err := ParseSemver(tt.in)
		if err != nil {
			t.Errorf("ParseSemver(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSemver(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}

	for _, in := range []string{"", "1.2", "a.b.c", "1.2.3-"} {
		if _, err := ParseSemver(in); err == nil {
			t.Errorf("ParseSemver(%q) succeeded, want error", in)
		}
	}
}

func TestSemverOrdering(t *testing.T) {
	ordered := []string{"0.9.9", "1.0.0-rc.1", "1.0.0", "1.0.1", "1.1.0", "2.0.0"}
	for i := 0; i < len(ordered)-1; i++ {
		a, _ := ParseSemver(ordered[i])
		b, _ := ParseSemver(ordered[i+1])
		if !a.LessThan(b) {
			t.Errorf("%s < %s = false", ordered[i], ordered[i+1])
		}
		if b.LessThan(a) {
			t.Errorf("%s < %s = true", ordered[i+1], ordered[i])
		}
	}
}

func TestCheckFindsNewerRelease(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tag_name":"v99.0.0","html_url":"https://example.com/rel","assets":[{"name":"deskmate-linux-amd64","browser_download_url":"https://example.com/a","size":1}]}`))
	}))
	t.Cleanup(srv.Close)

	result, err := NewCheckerWithURL(srv.URL).Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !result.Available {
		t.Error("Available = false for a newer release")
	}
	if result.LatestVersion != "99.0.0" {
		t.Errorf("LatestVersion = %q", result.LatestVersion)
	}
	if FindAsset(result.Release, "deskmate-linux-amd64") == nil {
		t.Error("FindAsset missed a present asset")
	}
	if FindAsset(result.Release, "missing") != nil {
		t.Error("FindAsset invented an asset")
	}
}

func TestCheckHandlesNoReleases(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	result, err := NewCheckerWithURL(srv.URL).Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if result.Available {
		t.Error("Available = true with no releases")
	}
}

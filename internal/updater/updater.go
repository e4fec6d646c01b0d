// Package updater checks GitHub Releases for newer host versions.
package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/deskmate-io/deskmate/internal/buildinfo"
)

const defaultReleasesURL = "https://api.github.com/repos/deskmate-io/deskmate/releases/latest"

// ReleaseInfo contains information about a GitHub release.
type ReleaseInfo struct {
	TagName string  `json:"tag_name"`
	HTMLURL string  `json:"html_url"`
	Assets  []Asset `json:"assets"`
}

// Asset represents a downloadable file in a release.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}

// Result contains the outcome of an update check.
type Result struct {
	Available      bool
	CurrentVersion string
	LatestVersion  string
	ReleaseURL     string
	Release        *ReleaseInfo
}

// Checker queries the release feed. The zero releasesURL means the
// project's GitHub repository.
type Checker struct {
	releasesURL string
	client      *http.Client
}

// NewChecker creates a checker against the project's release feed.
func NewChecker() *Checker {
	return &Checker{
		releasesURL: defaultReleasesURL,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// NewCheckerWithURL creates a checker against a specific feed URL.
func NewCheckerWithURL(url string) *Checker {
	c := NewChecker()
	c.releasesURL = url
	return c
}

// Check queries the release feed for a newer version than the running one.
func (c *Checker) Check(ctx context.Context) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.releasesURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "deskmate/"+buildinfo.Version)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch releases: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// No releases yet
		return &Result{CurrentVersion: buildinfo.Version}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("release feed returned %d", resp.StatusCode)
	}

	var release ReleaseInfo
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}

	latestVersion := strings.TrimPrefix(release.TagName, "v")
	current, err := ParseSemver(buildinfo.Version)
	if err != nil {
		// Dev builds have unparseable versions; treat them as older.
		return &Result{
			Available:      true,
			CurrentVersion: buildinfo.Version,
			LatestVersion:  latestVersion,
			ReleaseURL:     release.HTMLURL,
			Release:        &release,
		}, nil
	}

	latest, err := ParseSemver(latestVersion)
	if err != nil {
		return nil, fmt.Errorf("parse latest version %q: %w", latestVersion, err)
	}

	return &Result{
		Available:      current.LessThan(latest),
		CurrentVersion: buildinfo.Version,
		LatestVersion:  latestVersion,
		ReleaseURL:     release.HTMLURL,
		Release:        &release,
	}, nil
}

// HostAssetName returns the expected release asset name for this platform.
func HostAssetName() string {
	name := fmt.Sprintf("deskmate-%s-%s", runtime.GOOS, runtime.GOARCH)
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return name
}

// FindAsset finds an asset by name in a release.
func FindAsset(release *ReleaseInfo, name string) *Asset {
	for _, a := range release.Assets {
		if a.Name == name {
			return &a
		}
	}
	return nil
}

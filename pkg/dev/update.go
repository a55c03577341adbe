package dev

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/atollweb/atoll/internal/version"
	"github.com/atollweb/atoll/pkg/logging"
)

// UpdateChecker looks for a newer atoll release. Implementations must be
// safe to run concurrently with the dev cycle; failures are logged and
// swallowed by the orchestrator, never surfaced.
type UpdateChecker interface {
	Check(ctx context.Context) error
}

// defaultUpdateURL serves {"latest": "x.y.z"}.
const defaultUpdateURL = "https://api.atoll.dev/latest-version"

// updateInterval limits how often the network is touched.
const updateInterval = 24 * time.Hour

// httpUpdateChecker fetches the latest release version and logs when the
// running binary is behind. A stamp file in the state dir rate-limits
// the check to once per updateInterval.
type httpUpdateChecker struct {
	url       string
	stampPath string
	client    *http.Client
}

// NewUpdateChecker creates the default HTTP update checker, stamping
// into stateDir.
func NewUpdateChecker(stateDir string) UpdateChecker {
	return &httpUpdateChecker{
		url:       defaultUpdateURL,
		stampPath: filepath.Join(stateDir, "update-check"),
		client:    &http.Client{Timeout: 3 * time.Second},
	}
}

func (c *httpUpdateChecker) Check(ctx context.Context) error {
	logger := logging.GetLogger("dev.update")

	if info, err := os.Stat(c.stampPath); err == nil && time.Since(info.ModTime()) < updateInterval {
		logger.Trace().Msg("Update check stamped recently, skipping")
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	var payload struct {
		Latest string `json:"latest"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return err
	}

	if payload.Latest != "" && version.Version != "dev" && compareVersions(version.Version, payload.Latest) < 0 {
		logger.Info().
			Str("current", version.Version).
			Str("latest", payload.Latest).
			Msg("A new version of atoll is available")
	}

	if err := os.MkdirAll(filepath.Dir(c.stampPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(c.stampPath, []byte(payload.Latest), 0644)
}

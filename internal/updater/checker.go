package updater

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	goversion "github.com/hashicorp/go-version"
	gocache "github.com/patrickmn/go-cache"
)

// Update problems are never fatal to the ledger: callers degrade CheckFailed
// to "no update available" and UpdateFailed leaves the old binary running.
var (
	ErrCheckFailed  = errors.New("update check failed")
	ErrUpdateFailed = errors.New("update failed")
)

// Manifest is the remote version descriptor.
type Manifest struct {
	Version string `json:"version"`
	URL     string `json:"url"`
	Notes   string `json:"notes"`
}

type UpdateInfo struct {
	CurrentVersion string `json:"current_version"`
	NewVersion     string `json:"new_version"`
	URL            string `json:"url"`
	Notes          string `json:"notes"`
}

const checkCacheKey = "last-check"

type Checker struct {
	currentVersion string
	manifestURL    string
	client         *http.Client
	cache          *gocache.Cache
	targetPath     string // executable to replace; settable for tests
}

func NewChecker(currentVersion, manifestURL, targetPath string) *Checker {
	return &Checker{
		currentVersion: currentVersion,
		manifestURL:    manifestURL,
		client:         &http.Client{Timeout: 10 * time.Second},
		// one check per hour is plenty; a forced check clears the entry
		cache:      gocache.New(time.Hour, 2*time.Hour),
		targetPath: targetPath,
	}
}

// Check fetches the manifest and compares versions. Returns nil when the
// running version is current. Results are cached for an hour unless force
// is set.
func (c *Checker) Check(ctx context.Context, force bool) (*UpdateInfo, error) {
	if c.manifestURL == "" {
		return nil, fmt.Errorf("%w: no manifest URL configured", ErrCheckFailed)
	}

	if force {
		c.cache.Delete(checkCacheKey)
	} else if cached, ok := c.cache.Get(checkCacheKey); ok {
		return cached.(*UpdateInfo), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.manifestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCheckFailed, err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCheckFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: manifest returned HTTP %d", ErrCheckFailed, resp.StatusCode)
	}

	var m Manifest
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: bad manifest: %v", ErrCheckFailed, err)
	}

	current, err := goversion.NewVersion(c.currentVersion)
	if err != nil {
		return nil, fmt.Errorf("%w: bad current version %q: %v", ErrCheckFailed, c.currentVersion, err)
	}
	remote, err := goversion.NewVersion(m.Version)
	if err != nil {
		return nil, fmt.Errorf("%w: bad remote version %q: %v", ErrCheckFailed, m.Version, err)
	}

	var info *UpdateInfo
	if remote.GreaterThan(current) {
		info = &UpdateInfo{
			CurrentVersion: c.currentVersion,
			NewVersion:     m.Version,
			URL:            m.URL,
			Notes:          m.Notes,
		}
	}
	c.cache.Set(checkCacheKey, info, gocache.DefaultExpiration)
	return info, nil
}

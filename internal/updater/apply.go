package updater

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Apply downloads the new binary and swaps it in for the current one. The
// old binary is kept as a backup until the swap succeeds; any failure puts
// it back, so a botched update never leaves the installation broken.
// Restarting is the supervisor's job (or the caller's, via exit-on-apply).
func (c *Checker) Apply(ctx context.Context, downloadURL string) error {
	if downloadURL == "" {
		return fmt.Errorf("%w: empty download URL", ErrUpdateFailed)
	}
	target := c.targetPath
	if target == "" {
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("%w: cannot locate executable: %v", ErrUpdateFailed, err)
		}
		target = exe
	}

	// download into the target directory so the final rename stays on one
	// filesystem
	tmpPath := filepath.Join(filepath.Dir(target), ".update-"+uuid.NewString())
	if err := c.download(ctx, downloadURL, tmpPath); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0o755); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrUpdateFailed, err)
	}

	backupPath := target + ".bak"
	if err := os.Rename(target, backupPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: could not back up current binary: %v", ErrUpdateFailed, err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		// put the old binary back
		_ = os.Rename(backupPath, target)
		os.Remove(tmpPath)
		return fmt.Errorf("%w: could not install new binary: %v", ErrUpdateFailed, err)
	}

	os.Remove(backupPath)
	return nil
}

func (c *Checker) download(ctx context.Context, url, dest string) error {
	dlClient := &http.Client{Timeout: 60 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpdateFailed, err)
	}
	resp, err := dlClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: download: %v", ErrUpdateFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: download returned HTTP %d", ErrUpdateFailed, resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpdateFailed, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("%w: download interrupted: %v", ErrUpdateFailed, err)
	}
	return nil
}

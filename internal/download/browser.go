// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/pdiddy/litcorpus/internal/mapper"
	"github.com/pdiddy/litcorpus/internal/store"
)

// Browser opens a URL in a web browser that saves the PDF into the
// download directory on its own.
type Browser interface {
	Open(ctx context.Context, url string) error
}

// SystemBrowser opens URLs with the platform's default handler.
type SystemBrowser struct{}

// Open implements Browser.
func (SystemBrowser) Open(ctx context.Context, url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", url)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("opening browser: %w", err)
	}
	go cmd.Wait()
	return nil
}

// fetchViaBrowser opens desc.URL in the browser, waits until the browser
// has finished writing desc.Filename in the download directory and moves
// the file to dest.
func (d *Downloader) fetchViaBrowser(ctx context.Context, desc mapper.Descriptor, dest string) error {
	if d.Config.DownloadDir == "" {
		return fmt.Errorf("browser download of %s needs a download directory", desc.URL)
	}
	if err := d.Throttle.Wait(ctx); err != nil {
		return err
	}
	src := filepath.Join(d.Config.DownloadDir, desc.Filename)

	d.Logger.Debug("opening in browser", "url", desc.URL, "expect", src)
	if err := d.Browser.Open(ctx, desc.URL); err != nil {
		return err
	}

	for {
		done, err := d.downloadFinished(ctx, src)
		if err != nil {
			return err
		}
		if done {
			break
		}
		d.Logger.Debug("browser download not finished", "file", src)
	}

	d.Logger.Debug("moving browser download", "from", src, "to", dest)
	return moveFile(src, dest)
}

// downloadFinished reports whether path exists and its size did not change
// over one poll interval. It waits one interval when the file is missing.
func (d *Downloader) downloadFinished(ctx context.Context, path string) (bool, error) {
	before, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, d.Sleep(ctx, d.Config.PollInterval)
	}
	if err != nil {
		return false, fmt.Errorf("checking browser download: %w", err)
	}
	if err := d.Sleep(ctx, d.Config.PollInterval); err != nil {
		return false, err
	}
	after, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("checking browser download: %w", err)
	}
	d.Logger.Debug("browser download size", "file", path, "before", before.Size(), "after", after.Size())
	return before.Size() == after.Size(), nil
}

// moveFile renames src to dest, copying when they are on different
// file systems.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening browser download: %w", err)
	}
	err = store.WriteFileAtomic(dest, f)
	f.Close()
	if err != nil {
		return err
	}
	return os.Remove(src)
}

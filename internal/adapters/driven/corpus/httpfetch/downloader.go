// Package httpfetch downloads the corpus archive over HTTP.
//
// Downloads stream into a temporary file beside the destination and are
// renamed into place only once complete, so an interrupted transfer never
// looks like a finished archive. Bandwidth can be capped with a token bucket.
package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/stopprep/internal/core/ports/driven"
)

// Ensure Downloader implements the interface.
var _ driven.ThrottledDownloader = (*Downloader)(nil)

// copyBufSize bounds a single read so the limiter can pace small bursts.
const copyBufSize = 32 * 1024

// Downloader fetches a URL to a local file.
type Downloader struct {
	client   *http.Client
	limiter  *rate.Limiter
	progress io.Writer
}

// NewDownloader creates a downloader.
// rateLimitKBps caps throughput in KiB/s; zero disables the cap.
// Progress lines are written to progress when it is non-nil.
func NewDownloader(client *http.Client, rateLimitKBps int, progress io.Writer) *Downloader {
	if client == nil {
		client = &http.Client{}
	}
	d := &Downloader{client: client, progress: progress}
	d.SetRateLimit(rateLimitKBps)
	return d
}

// SetRateLimit caps throughput in KiB/s. Zero or less removes the cap.
// It must not be called while a download is running.
func (d *Downloader) SetRateLimit(kbps int) {
	if kbps <= 0 {
		d.limiter = nil
		return
	}
	bytesPerSec := kbps * 1024
	d.limiter = rate.NewLimiter(rate.Limit(bytesPerSec), max(bytesPerSec, copyBufSize))
}

// Download writes the content at url to dest.
func (d *Downloader) Download(ctx context.Context, url, dest string) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("get %s: unexpected status %s", url, resp.Status)
	}

	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".part-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	var body io.Reader = resp.Body
	if d.limiter != nil {
		body = &throttledReader{ctx: ctx, r: body, limiter: d.limiter}
	}
	if d.progress != nil {
		body = newProgressReader(body, d.progress, filepath.Base(dest), resp.ContentLength)
	}

	if _, err = io.CopyBuffer(tmp, body, make([]byte, copyBufSize)); err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", tmpPath, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}
	if err = os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("rename into %s: %w", dest, err)
	}
	return nil
}

// throttledReader paces reads through a token bucket of bytes.
type throttledReader struct {
	ctx     context.Context
	r       io.Reader
	limiter *rate.Limiter
}

func (t *throttledReader) Read(p []byte) (int, error) {
	if burst := t.limiter.Burst(); len(p) > burst {
		p = p[:burst]
	}
	n, err := t.r.Read(p)
	if n > 0 {
		if werr := t.limiter.WaitN(t.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}

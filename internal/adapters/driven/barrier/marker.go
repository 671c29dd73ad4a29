package barrier

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/stopprep/internal/core/domain"
	"github.com/custodia-labs/stopprep/internal/logger"
)

// MarkerName is the marker file written into the save folder.
const MarkerName = ".stopprep-done"

// DefaultTimeout bounds how long a waiting rank blocks.
const DefaultTimeout = 2 * time.Hour

// Marker statuses.
const (
	statusOK     = "ok"
	statusFailed = "failed"
)

// Result is the outcome published by the main rank.
type Result struct {
	// Token is the job's run token.
	Token string

	// RunID is the main rank's run ID, or the failure message.
	RunID string

	// Failed is true when the main rank's preparation failed.
	Failed bool
}

// Barrier is a run-on-main barrier backed by a marker file.
type Barrier struct {
	dir     string
	token   string
	timeout time.Duration
}

// New creates a barrier publishing into dir for the given run token.
func New(dir, token string, timeout time.Duration) (*Barrier, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: multi-process runs need a run token", domain.ErrInvalidInput)
	}
	if strings.ContainsAny(token, "\r\n") {
		return nil, fmt.Errorf("%w: run token must be a single line", domain.ErrInvalidInput)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Barrier{dir: dir, token: token, timeout: timeout}, nil
}

// Path returns the marker file path.
func (b *Barrier) Path() string {
	return filepath.Join(b.dir, MarkerName)
}

// Reset removes a marker left by an earlier job. Called by the main rank
// before it starts preparing.
func (b *Barrier) Reset() error {
	if err := os.Remove(b.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove marker: %w", err)
	}
	return nil
}

// Signal publishes the main rank's outcome. A non-nil prepErr is published as
// a failure so waiting ranks stop instead of timing out.
func (b *Barrier) Signal(runID string, prepErr error) error {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return fmt.Errorf("create marker directory: %w", err)
	}

	status, detail := statusOK, runID
	if prepErr != nil {
		status = statusFailed
		detail = strings.ReplaceAll(prepErr.Error(), "\n", " ")
	}
	content := fmt.Sprintf("%s\n%s\n%s\n", b.token, status, detail)

	tmp, err := os.CreateTemp(b.dir, MarkerName+".tmp-*")
	if err != nil {
		return fmt.Errorf("create marker: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write marker: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close marker: %w", err)
	}
	if err := os.Rename(tmpPath, b.Path()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("publish marker: %w", err)
	}
	return nil
}

// Wait blocks until the main rank publishes a marker for this barrier's
// token, the timeout elapses, or ctx is cancelled.
// Returns domain.ErrBarrierTimeout on timeout.
func (b *Barrier) Wait(ctx context.Context) (*Result, error) {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create marker directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(b.dir); err != nil {
		return nil, fmt.Errorf("watch %s: %w", b.dir, err)
	}

	// The marker may have landed before the watch was registered.
	if res, ok := b.check(); ok {
		return res.outcome()
	}

	logger.Info("Waiting for the main process to finish preparation...")

	timer := time.NewTimer(b.timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
			return nil, fmt.Errorf("%w: no marker at %s after %s", domain.ErrBarrierTimeout, b.Path(), b.timeout)
		case event, ok := <-watcher.Events:
			if !ok {
				return nil, errors.New("watcher closed")
			}
			if !b.isMarkerEvent(event) {
				continue
			}
			if res, ok := b.check(); ok {
				return res.outcome()
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil, errors.New("watcher closed")
			}
			logger.Warn("barrier watcher: %v", werr)
		}
	}
}

func (b *Barrier) isMarkerEvent(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != MarkerName {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write)
}

// check reads the marker and reports whether it belongs to this job.
func (b *Barrier) check() (*Result, bool) {
	data, err := os.ReadFile(b.Path())
	if err != nil {
		return nil, false
	}
	res, err := parseMarker(data)
	if err != nil {
		logger.Debug("ignoring marker: %v", err)
		return nil, false
	}
	if res.Token != b.token {
		logger.Debug("ignoring marker from another job")
		return nil, false
	}
	return res, true
}

func (r *Result) outcome() (*Result, error) {
	if r.Failed {
		return r, fmt.Errorf("main process failed: %s", r.RunID)
	}
	return r, nil
}

func parseMarker(data []byte) (*Result, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if len(lines) < 3 {
		return nil, fmt.Errorf("%w: marker has %d lines", domain.ErrMalformedTable, len(lines))
	}

	res := &Result{Token: lines[0], RunID: lines[2]}
	switch lines[1] {
	case statusOK:
	case statusFailed:
		res.Failed = true
	default:
		return nil, fmt.Errorf("%w: unknown marker status %q", domain.ErrMalformedTable, lines[1])
	}
	return res, nil
}

// Package targz unpacks gzip-compressed tar archives.
package targz

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/custodia-labs/stopprep/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.ArchiveExtractor = (*Extractor)(nil)

// ErrUnsafePath is returned for entries that would land outside the destination.
var ErrUnsafePath = errors.New("archive entry escapes destination")

// Extractor unpacks .tar.gz archives.
// Regular files and directories are restored; symlinks and devices are skipped.
type Extractor struct{}

// NewExtractor creates an extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract unpacks archive into destDir.
// Entries are staged in a hidden directory under destDir and each top-level
// entry is renamed into place only after the whole archive has been read, so
// a failed or interrupted run leaves nothing behind at the final paths.
func (e *Extractor) Extract(ctx context.Context, archive, destDir string) error {
	f, err := os.Open(archive)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("open gzip stream: %w", err)
	}
	defer gz.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}
	staging, err := os.MkdirTemp(destDir, stagingPattern)
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := unpack(ctx, tar.NewReader(gz), staging); err != nil {
		return err
	}
	return promote(staging, destDir)
}

// stagingPattern names the in-progress extraction directory.
const stagingPattern = ".extract-*"

func unpack(ctx context.Context, tr *tar.Reader, root string) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar entry: %w", err)
		}

		target, err := safeJoin(root, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return fmt.Errorf("extract %s: %w", hdr.Name, err)
			}
		}
	}
}

// promote moves every top-level entry of staging into destDir.
// Existing entries are never overwritten.
func promote(staging, destDir string) error {
	entries, err := os.ReadDir(staging)
	if err != nil {
		return err
	}
	for _, ent := range entries {
		final := filepath.Join(destDir, ent.Name())
		if _, err := os.Lstat(final); err == nil {
			return fmt.Errorf("promote %s: %w", ent.Name(), os.ErrExist)
		}
		if err := os.Rename(filepath.Join(staging, ent.Name()), final); err != nil {
			return fmt.Errorf("promote %s: %w", ent.Name(), err)
		}
	}
	return nil
}

// safeJoin resolves name under root, rejecting absolute and parent paths.
func safeJoin(root, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return filepath.Join(root, clean), nil
}

func writeFile(target string, r io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if perm == 0 {
		perm = 0o644
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

package csvfile

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	filePerm = 0o644
	dirPerm  = 0o755
	bufSize  = 64 * 1024
)

// writeAtomic streams fill's output to a temp file beside dest and renames it
// into place. It returns the hex SHA-256 of the bytes written.
func writeAtomic(dest string, fill func(w io.Writer) error) (digest string, err error) {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	h := sha256.New()
	bw := bufio.NewWriterSize(io.MultiWriter(tmp, h), bufSize)
	if err = fill(bw); err != nil {
		return "", err
	}
	if err = bw.Flush(); err != nil {
		return "", err
	}
	if err = tmp.Sync(); err != nil {
		return "", err
	}
	if err = tmp.Close(); err != nil {
		return "", err
	}
	if err = os.Chmod(tmpPath, filePerm); err != nil {
		return "", err
	}
	if err = os.Rename(tmpPath, dest); err != nil {
		return "", fmt.Errorf("rename into %s: %w", dest, err)
	}
	syncDir(dir)

	return hex.EncodeToString(h.Sum(nil)), nil
}

// syncDir flushes directory metadata so the rename survives a crash.
// Best effort: some filesystems refuse to fsync directories.
func syncDir(dir string) {
	f, err := os.Open(dir)
	if err != nil {
		return
	}
	defer f.Close()
	_ = f.Sync()
}

// fileDigest returns the hex SHA-256 of the file at path.
func fileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// WriteFileAtomic writes data to dst through a staging file in tmpDir.
// tmpDir must live on the same filesystem as dst so the final rename is
// atomic; a crash mid-write leaves only the staging file.
func WriteFileAtomic(tmpDir, dst string, data []byte) error {
	tmp, err := os.CreateTemp(tmpDir, filepath.Base(dst)+".*")
	if err != nil {
		return fmt.Errorf("failed to create staging file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()
	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write staging file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync staging file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close staging file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(dst), err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", filepath.Base(dst), err)
	}
	return nil
}

// CopyFileAtomic copies src to dst through a staging file in tmpDir.
// Readers of dst never observe a partial copy.
func CopyFileAtomic(tmpDir, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(tmpDir, filepath.Base(dst)+".*")
	if err != nil {
		return fmt.Errorf("failed to create staging file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()
	if _, err := io.Copy(tmp, in); err != nil {
		return fmt.Errorf("failed to copy %s: %w", filepath.Base(src), err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync staging file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close staging file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(dst), err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", filepath.Base(dst), err)
	}
	return nil
}

// WriteFileAtomic writes data to dst through the store's staging dir.
func (s *Store) WriteFileAtomic(dst string, data []byte) error {
	return WriteFileAtomic(s.TmpDir(), dst, data)
}

// CopyFileAtomic copies src to dst through the store's staging dir.
func (s *Store) CopyFileAtomic(src, dst string) error {
	return CopyFileAtomic(s.TmpDir(), src, dst)
}

// CopyTree copies every regular file under src into dst, each through
// tmpDir. Used for version-slot transfer during replication; per-file
// atomicity is enough because slots are only published after the copy
// completes.
func CopyTree(tmpDir, src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		return CopyFileAtomic(tmpDir, path, filepath.Join(dst, rel))
	})
}

// HashFile returns the SHA-256 of a file's contents in hex. This is the
// content identifier used for cross-machine reconciliation.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", filepath.Base(path), err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// FileSize returns a file's size in bytes.
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// CheckDiskSpace verifies dir's filesystem has at least required bytes
// free, returning a DiskSpaceError when it does not.
func CheckDiskSpace(dir string, required uint64) error {
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		return fmt.Errorf("failed to check disk space at %s: %w", dir, err)
	}
	available := st.Bavail * uint64(st.Bsize)
	if available < required {
		return &DiskSpaceError{Path: dir, Required: required, Available: available}
	}
	return nil
}

// Package fsutil answers existence questions about paths and copies template trees.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Exists reports whether path exists. Errors other than "not exist" are returned.
func Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// IsFile reports whether path exists and is a regular file.
func IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// RemoveTree deletes path recursively. A missing path is not an error.
func RemoveTree(path string) error {
	if err := os.RemoveAll(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// CopyStats reports what CopyTree did.
type CopyStats struct {
	Copied  int
	Skipped int
}

// CopyTree copies the tree rooted at src into dst. Files that already exist at
// the destination are left untouched. Symlinks are recreated, not followed.
func CopyTree(src, dst string) (CopyStats, error) {
	var stats CopyStats
	if !IsDir(src) {
		return stats, fmt.Errorf("copy source %s is not a directory", src)
	}
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			return os.MkdirAll(target, info.Mode().Perm()|0o700)
		case d.Type()&fs.ModeSymlink != 0:
			exists, err := Exists(target)
			if err != nil {
				return err
			}
			if exists {
				stats.Skipped++
				return nil
			}
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			stats.Copied++
			return os.Symlink(link, target)
		case d.Type().IsRegular():
			copied, err := copyFile(path, target, info.Mode().Perm())
			if err != nil {
				return err
			}
			if copied {
				stats.Copied++
			} else {
				stats.Skipped++
			}
		}
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return stats, nil
}

// copyFile writes src to dst unless dst exists. It reports whether a copy happened.
func copyFile(src, dst string, perm fs.FileMode) (bool, error) {
	in, err := os.Open(src)
	if err != nil {
		return false, err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return false, err
	}
	return true, out.Close()
}

// ReadText reads a text file; a missing file yields ("", false, nil).
func ReadText(path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

// WriteText replaces the content of path, keeping its mode when it exists.
func WriteText(path, content string) error {
	perm := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), perm)
}

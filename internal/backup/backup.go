// Package backup copies database files around destructive operations. It
// is a plain file-copy layer; it knows nothing about what the files hold.
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const timeLayout = "20060102_150405"

// Create copies src into dir as <stem>_backup_<timestamp><ext> and returns
// the backup path. An empty dir puts the backup next to the source.
func Create(src, dir string) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("cannot back up %s: %w", src, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("cannot back up %s: is a directory", src)
	}

	if dir == "" {
		dir = filepath.Dir(src)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("cannot create backup dir %s: %w", dir, err)
	}

	base := filepath.Base(src)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	dst := filepath.Join(dir, fmt.Sprintf("%s_backup_%s%s", stem, time.Now().Format(timeLayout), ext))

	if err := copyFile(src, dst, info.Mode()); err != nil {
		return "", err
	}
	return dst, nil
}

// Restore copies a backup file over dst. The caller must have closed every
// connection to dst first.
func Restore(backupPath, dst string) error {
	info, err := os.Stat(backupPath)
	if err != nil {
		return fmt.Errorf("cannot restore from %s: %w", backupPath, err)
	}
	return copyFile(backupPath, dst, info.Mode())
}

// List returns the backups of src found in dir, newest last.
func List(src, dir string) ([]string, error) {
	if dir == "" {
		dir = filepath.Dir(src)
	}
	base := filepath.Base(src)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	pattern := filepath.Join(dir, fmt.Sprintf("%s_backup_*%s", stem, ext))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("cannot list backups in %s: %w", dir, err)
	}
	return matches, nil
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copy to %s failed: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("copy to %s failed: %w", dst, err)
	}
	return nil
}

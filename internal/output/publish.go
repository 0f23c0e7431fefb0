package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Publish moves a finished report into dstDir and returns its new path.
// A rename is tried first; across filesystems it falls back to copy and remove.
func Publish(src, dstDir string) (string, error) {
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return "", fmt.Errorf("%w: create publish directory: %w", ErrOutputUnwritable, err)
	}
	dst := filepath.Join(dstDir, filepath.Base(src))

	if err := os.Rename(src, dst); err == nil {
		return dst, nil
	}

	if err := copyFile(src, dst); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("%w: publish %s: %w", ErrOutputUnwritable, src, err)
	}
	if err := os.Remove(src); err != nil {
		return "", fmt.Errorf("remove published source %s: %w", src, err)
	}
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmpPath := dst + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, dst)
}

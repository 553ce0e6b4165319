package utils

import (
	"io"
	"os"
	"path/filepath"
)

// CopyFile copies src to dst byte-for-byte, creating parent directories and
// overwriting any existing destination. Returns the number of bytes copied.
func CopyFile(src, dst string) (int64, error) {
	dstDir := filepath.Dir(dst)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return 0, err
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(dstFile, srcFile)
	if err != nil {
		dstFile.Close()
		return n, err
	}

	return n, dstFile.Close()
}

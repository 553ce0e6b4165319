package sync

import (
	"fmt"
	"io"
	"os"

	"lukechampine.com/blake3"
)

const (
	// EmptyDirHash is the sentinel digest for directory placeholder entries.
	EmptyDirHash = "empty-dir"

	hashTag = "blake3"
)

// HashFile computes the algorithm-tagged content digest of a file, e.g.
// "blake3:<hex>". The tag makes persisted snapshots self-describing.
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for hashing: %w", err)
	}
	defer file.Close()

	hasher := blake3.New(32, nil)
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	return fmt.Sprintf("%s:%x", hashTag, hasher.Sum(nil)), nil
}

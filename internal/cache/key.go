package cache

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// FileKey identifies a file by base name and size. It is cheap and matches
// how operators re-drop the same export into an intake folder.
func FileKey(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	digest := xxhash.New()
	_, _ = digest.WriteString(filepath.Base(path))
	_, _ = digest.WriteString("|")
	_, _ = digest.WriteString(strconv.FormatInt(fi.Size(), 10))
	return "f:" + hex.EncodeToString(digest.Sum(nil)), nil
}

// ContentKey hashes the bytes themselves.
func ContentKey(kind string, b []byte) string {
	digest := xxhash.New()
	_, _ = digest.Write(b)
	return kind + ":" + hex.EncodeToString(digest.Sum(nil))
}

// FileContentKey streams a file through the hasher.
func FileContentKey(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer f.Close()

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("failed to hash file %s: %w", path, err)
	}
	return "c:" + hex.EncodeToString(hasher.Sum(nil)), nil
}

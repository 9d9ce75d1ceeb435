package contract

import (
	"os"
	"path/filepath"
)

// cacheDBFileName is the default SQLite cache file.
const cacheDBFileName = "movement_cache.db"

// GetCacheDBFilePath returns the default SQLite DB file path for the
// movement cache, under the user cache directory when available.
func GetCacheDBFilePath() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return cacheDBFileName
	}
	dir := filepath.Join(base, "priorityx")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return cacheDBFileName
	}
	return filepath.Join(dir, cacheDBFileName)
}

package sqlite

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	// URIPrefix precedes the absolute file path in built connection strings.
	URIPrefix = "sqlite:///"

	// MemoryPath selects a private in-memory database.
	MemoryPath = ":memory:"

	// MemoryURI is the connection string used when no file is configured.
	MemoryURI = URIPrefix + MemoryPath

	busyTimeoutMillis = 5000
)

// StripPrefix removes a leading "sqlite:///" or "sqlite:" from s.
func StripPrefix(s string) string {
	switch {
	case strings.HasPrefix(s, URIPrefix):
		return s[len(URIPrefix):]
	case strings.HasPrefix(s, "sqlite:"):
		return s[len("sqlite:"):]
	}
	return s
}

// ResolvePath expands a leading ~ and makes path absolute. The in-memory
// marker is returned unchanged.
func ResolvePath(path string) (string, error) {
	if path == MemoryPath {
		return path, nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}

// driverDSN converts a built connection string to a modernc.org/sqlite file:
// URI. The path is escaped so that ? and # stay part of the file name.
func driverDSN(uri string) string {
	path := StripPrefix(uri)
	if path == MemoryPath || path == "" {
		return MemoryPath
	}
	escaped := (&url.URL{Path: filepath.ToSlash(path)}).EscapedPath()
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", escaped, busyTimeoutMillis)
}

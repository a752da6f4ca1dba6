package filesystem

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolveRoot converts a user supplied directory to a clean absolute path.
// Handles file:// URIs and a leading ~ for the home directory.
func ResolveRoot(uri string) (string, error) {
	path := strings.TrimPrefix(uri, "file://")
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	if path == "" {
		path = "."
	}
	return filepath.Abs(path)
}

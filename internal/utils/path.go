package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome expands a leading '~' in a path to the user home directory.
func ExpandHome(p string) string {
	if strings.HasPrefix(p, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[1:])
	}
	return p
}

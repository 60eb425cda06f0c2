package cycle

import (
	"path/filepath"
	"strings"
)

// IsImage reports whether a filename carries a recognized image extension.
func IsImage(name string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

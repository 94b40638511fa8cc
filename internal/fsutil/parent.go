package fsutil

import (
	"path/filepath"
	"strings"
)

// SplitParent splits pathValue at its final separator. ok is false when the
// path has no separator and therefore no directory that could be watched.
// A path whose only separator is the leading one belongs to the root.
func SplitParent(pathValue string) (dir, name string, ok bool) {
	index := strings.LastIndexByte(pathValue, filepath.Separator)
	if index < 0 {
		return "", pathValue, false
	}
	dir = pathValue[:index]
	if dir == "" {
		dir = string(filepath.Separator)
	}
	return dir, pathValue[index+1:], true
}

// BaseName returns everything after the final separator.
func BaseName(pathValue string) string {
	_, name, _ := SplitParent(pathValue)
	return name
}

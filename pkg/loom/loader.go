package loom

import (
	"errors"
	"os"
	"path/filepath"
	"unicode/utf8"

	"go.uber.org/zap"
)

var errInvalidUTF8 = errors.New("template is not valid UTF-8")

// templateCacheKey normalizes a path so equivalent spellings share one
// cache entry.
func templateCacheKey(path string) string {
	return filepath.Clean(path)
}

// readTemplateFile reads template text from disk. Failures are wrapped in
// a LoadError carrying the original path.
func readTemplateFile(path string) (string, error) {
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", NewLoadError(path, err)
	}
	if !utf8.Valid(content) {
		return "", NewLoadError(path, errInvalidUTF8)
	}

	GetLogger().Debug("loaded template file",
		zap.String("path", path),
		zap.Int("bytes", len(content)))
	return string(content), nil
}

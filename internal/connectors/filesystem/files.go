package filesystem

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/lexicon/internal/core/domain"
)

// fileTypes maps recognised extensions to their classification.
var fileTypes = map[string]domain.FileType{
	".pdf":      domain.FileTypePDF,
	".md":       domain.FileTypeNote,
	".markdown": domain.FileTypeNote,
	".txt":      domain.FileTypeNote,
}

// fallbackMIMETypes covers extensions the platform MIME table may not know.
var fallbackMIMETypes = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".txt":      "text/plain",
	".pdf":      "application/pdf",
}

// classify returns the file type of path, or false if it is not a corpus file.
func classify(path string) (domain.FileType, bool) {
	t, ok := fileTypes[strings.ToLower(filepath.Ext(path))]
	return t, ok
}

// detectMIMEType returns the MIME type of path without parameters.
func detectMIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "text/plain"
	}
	if m, ok := fallbackMIMETypes[ext]; ok {
		return m
	}
	if m := mime.TypeByExtension(ext); m != "" {
		if i := strings.IndexByte(m, ';'); i >= 0 {
			m = m[:i]
		}
		return strings.TrimSpace(m)
	}
	return "application/octet-stream"
}

// documentName is the basename of path without its extension.
func documentName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "." || part == ".." || part == "" {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

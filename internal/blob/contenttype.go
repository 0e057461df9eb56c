package blob

import (
	"mime"
	"path/filepath"
	"strings"
)

// knownTypes covers extensions the platform mime table may not register.
// mime.TypeByExtension consults /etc/mime.types at runtime, which makes its
// answers host-dependent for anything outside the builtin set.
var knownTypes = map[string]string{
	".txt":  "text/plain",
	".log":  "text/plain",
	".csv":  "text/csv",
	".md":   "text/markdown",
	".json": "application/json",
	".html": "text/html",
	".xml":  "application/xml",
}

// DetectContentType guesses a MIME type from the file extension. Unknown
// extensions map to application/octet-stream.
func DetectContentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := knownTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

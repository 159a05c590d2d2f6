package filesystem

import (
	"net/url"
	"path/filepath"
	"strings"
)

// ResolvePath turns a file:// URI or a bare path into a clean local path.
func ResolvePath(uri string) string {
	uri = strings.TrimSpace(uri)
	if strings.HasPrefix(uri, "file://") {
		if u, err := url.Parse(uri); err == nil && u.Path != "" {
			uri = u.Path
		} else {
			uri = strings.TrimPrefix(uri, "file://")
		}
	}
	if uri == "" {
		return ""
	}
	return filepath.Clean(uri)
}

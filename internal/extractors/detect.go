package extractors

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// extensionTypes maps file extensions to MIME types. It is consulted first
// because sniffing cannot tell Markdown or CSV from plain text.
var extensionTypes = map[string]string{
	".pdf":      MIMEPDF,
	".docx":     MIMEDOCX,
	".xlsx":     MIMEXLSX,
	".html":     MIMEHTML,
	".htm":      MIMEHTML,
	".md":       MIMEMarkdown,
	".markdown": MIMEMarkdown,
	".txt":      MIMEPlainText,
	".csv":      MIMECSV,
	".eml":      MIMEEmail,
	".png":      MIMEPNG,
	".jpg":      MIMEJPEG,
	".jpeg":     MIMEJPEG,
	".gif":      MIMEGIF,
	".webp":     MIMEWebP,
}

// DetectMIME determines the MIME type of a file from its name and content.
// The extension wins when known. Otherwise the content is sniffed with
// net/http first and mimetype second.
func DetectMIME(name string, content []byte) string {
	if mt, ok := extensionTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return mt
	}
	return SniffMIME(content)
}

// SniffMIME determines the MIME type from content alone.
func SniffMIME(content []byte) string {
	if len(content) == 0 {
		return MIMEOctet
	}
	if mt := Canonical(http.DetectContentType(content)); mt != MIMEOctet && mt != "application/zip" {
		return mt
	}
	return Canonical(mimetype.Detect(content).String())
}

// Canonical strips parameters from a MIME type and lower-cases it.
// "text/plain; charset=utf-8" becomes "text/plain".
func Canonical(mimeType string) string {
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

// KnownExtension reports whether name has an extension the pipeline reads.
func KnownExtension(name string) bool {
	_, ok := extensionTypes[strings.ToLower(filepath.Ext(name))]
	return ok
}

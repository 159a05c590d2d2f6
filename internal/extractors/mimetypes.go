package extractors

// Well-known MIME types handled by the pipeline.
const (
	MIMEPDF       = "application/pdf"
	MIMEDOCX      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEXLSX      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMEHTML      = "text/html"
	MIMEMarkdown  = "text/markdown"
	MIMEPlainText = "text/plain"
	MIMECSV       = "text/csv"
	MIMEEmail     = "message/rfc822"
	MIMEPNG       = "image/png"
	MIMEJPEG      = "image/jpeg"
	MIMEGIF       = "image/gif"
	MIMEWebP      = "image/webp"
	MIMEOctet     = "application/octet-stream"
)

// ImageMIMETypes returns the image types vision models accept.
func ImageMIMETypes() []string {
	return []string{MIMEPNG, MIMEJPEG, MIMEGIF, MIMEWebP}
}

// IsImage reports whether mimeType is an image type vision models accept.
func IsImage(mimeType string) bool {
	for _, m := range ImageMIMETypes() {
		if m == mimeType {
			return true
		}
	}
	return false
}

// Package extractors provides the strategy registry and MIME detection for
// the extraction cascade. Each sub-package implements driven.Extractor for
// one format (pdf, docx, xlsx, html, markdown, plaintext) or one generic
// strategy (layout, vision).
//
// Extractors are registered with the Registry at startup. Adding a format
// means adding a package and one Register call.
package extractors

// Package docx extracts paragraphs and tables from Word documents.
//
// word/document.xml is walked with a streaming XML decoder so body order
// is preserved. The parsed model keeps cell merge properties for the
// layout parser.
package docx

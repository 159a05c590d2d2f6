// Package plaintext extracts plain text and CSV files.
package plaintext

// Package html extracts text and tables from HTML documents.
//
// Tables are read with goquery and emitted as table blocks; the rest of the
// page is stripped to readable prose.
package html

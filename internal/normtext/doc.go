// Package normtext implements the normalised text format shared by every
// extractor and the requirement analyzer.
//
// Normalised text is plain prose lines interleaved with table blocks:
//
//	=== TABLE START ===
//	HEADERS: Item | Qty | Unit
//	ROW: Cordless drill | 50 | units
//	=== TABLE END ===
//
// Markers are paired and never nested. Every ROW carries exactly as many
// values as its HEADERS line, in source column order. Cell text never
// contains "|" or line breaks.
package normtext

// Package pdf extracts text and tables from PDF documents.
//
// Glyphs are read with their positions, grouped into lines by baseline and
// split into cells on wide horizontal gaps. Runs of lines whose cells line
// up are emitted as table blocks; everything else is prose. The geometry
// helpers are exported for the layout parser.
package pdf

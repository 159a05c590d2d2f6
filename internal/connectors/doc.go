// Package connectors holds the sources documents arrive from.
// The filesystem connector scans and watches local directories.
package connectors

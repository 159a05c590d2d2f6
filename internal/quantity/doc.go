// Package quantity parses requested quantities and units as they appear in
// RFQ documents: thousand separators, decimal commas, attached units and
// quantities written into item descriptions.
package quantity

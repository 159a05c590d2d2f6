// Package eml extracts text and tables from e-mail messages.
//
// RFQs often arrive as mail with the request in the body or in a CSV
// attachment. Headers useful to the analyzer (subject, sender, date) are
// kept at the top of the text.
package eml

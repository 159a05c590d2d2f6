// Package markdown extracts pipe tables and prose from Markdown documents.
package markdown

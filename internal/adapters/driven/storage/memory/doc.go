// Package memory provides in-memory implementations of the storage ports.
// They back tests and runs started with --no-store.
package memory

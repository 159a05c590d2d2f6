// Package fixtures builds small in-memory documents for tests.
// Nothing here touches the filesystem.
package fixtures

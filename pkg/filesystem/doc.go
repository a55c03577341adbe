// Package filesystem provides filesystem implementations for atoll.
//
// This package contains implementations of the types.FS interface,
// including the standard OS filesystem and an in-memory filesystem
// used by tests.
package filesystem

// Package filesystem abstracts the file operations the reconciliation
// engine performs, so the same code runs against the container's real
// filesystem in production and an in-memory filesystem in tests.
package filesystem

import (
	"io/fs"
)

// FS is the minimal filesystem surface used by the reconciler and the
// secret provisioner. Every write is a complete file rewrite; there is
// no appending or partial update.
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	MkdirAll(path string, perm fs.FileMode) error
}

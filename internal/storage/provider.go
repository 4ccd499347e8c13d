// Package storage defines the vault file-system abstraction.
package storage

import "github.com/starford/tagvault/internal/models"

// Provider is the interface for vault file operations. Paths are relative
// to the vault root and use the host separator.
type Provider interface {
	// List returns metadata for every .md file under dir, in lexical order.
	// Hidden files and directories are skipped.
	List(dir string) ([]models.DocumentMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write replaces the content of path atomically: readers see either the
	// old or the new content, never a mix.
	Write(path string, content []byte) error
}

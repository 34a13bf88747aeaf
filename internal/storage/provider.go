// Package storage defines the content file-system abstraction.
package storage

import "github.com/starford/sitekit/internal/models"

// Provider is the interface for content file operations.
type Provider interface {
	// List returns metadata for every file under dir (relative to the root)
	// whose extension is in exts. Order follows the directory walk.
	List(dir string, exts []string) ([]models.DocumentMetadata, error)
	// Read returns the raw bytes of the file at path (relative to the root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the root).
	Write(path string, content []byte) error
}

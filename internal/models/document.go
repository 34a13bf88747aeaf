// Package models defines the domain types for sitekit.
package models

// Frontmatter holds the fields extracted from one document's frontmatter block.
type Frontmatter struct {
	Tags []string `json:"tags"`
	Slug string   `json:"slug"`
}

// Document represents a scanned content file with its resolved identifier.
type Document struct {
	Path     string   `json:"path"`
	Slug     string   `json:"slug"`
	Tags     []string `json:"tags"`
	Checksum string   `json:"checksum"`
}

// DocumentMetadata is a lightweight representation returned by list operations.
type DocumentMetadata struct {
	Path     string `json:"path"`
	Checksum string `json:"checksum"`
}

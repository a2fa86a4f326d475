// Package storage defines the drop-box file-system abstraction used by the
// markdown importer.
package storage

import "time"

// FileInfo describes one markdown file in the drop-box.
type FileInfo struct {
	Path      string // relative to the drop-box root
	Checksum  string
	UpdatedAt time.Time
}

// Provider is the interface for drop-box file operations.
type Provider interface {
	// List returns metadata for every .md file under dir (relative to root).
	List(dir string) ([]FileInfo, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Delete removes the file at path (relative to root).
	Delete(path string) error
}

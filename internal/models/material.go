// Package models defines the record types persisted and observed by the
// offline engine.
package models

import "time"

// Material is the metadata row for a downloaded learning resource. A material
// counts as downloaded only while both this row and its CachedFile exist.
type Material struct {
	// ID is a globally unique identifier for the material.
	ID string

	Title       string
	Description string

	SubjectID   string
	SubjectName string

	// FileRef is the remote reference used to fetch the blob (a storage key
	// or a URL, depending on the content source).
	FileRef  string
	FileName string
	FileSize int64
	FileType string

	// Version is the monotonic, server-assigned version used to detect
	// staleness against the remote source.
	Version int64

	DownloadedAt time.Time
	LastAccessed time.Time
}

// CachedFile is the binary payload paired 1:1 with a Material by id.
type CachedFile struct {
	MaterialID string
	Data       []byte
	MimeType   string
}

// StorageUsage is derived from the store on demand, never persisted.
type StorageUsage struct {
	TotalBytes    int64
	MaterialCount int
}

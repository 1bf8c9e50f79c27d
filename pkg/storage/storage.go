// Package storage stores the files produced by a statement analysis:
// the uploaded PDF and the rendered HTML report.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// FileInfo contains metadata about a stored file
type FileInfo struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Path        string    `json:"path"` // Internal storage path
	CreatedAt   time.Time `json:"created_at"`
}

// Storage defines the interface for analysis file storage.
// Files are grouped per analysis so a purge can remove everything at once.
type Storage interface {
	// Save stores a file under the given analysis and returns its metadata
	Save(ctx context.Context, analysisID uuid.UUID, filename string, contentType string, r io.Reader) (*FileInfo, error)

	// Open retrieves a file by its ID
	Open(ctx context.Context, analysisID uuid.UUID, fileID uuid.UUID) (io.ReadCloser, *FileInfo, error)

	// GetInfo returns metadata for a file without opening it
	GetInfo(ctx context.Context, analysisID uuid.UUID, fileID uuid.UUID) (*FileInfo, error)

	// List returns all files stored for an analysis
	List(ctx context.Context, analysisID uuid.UUID) ([]*FileInfo, error)

	// DeleteAll removes every file stored for an analysis
	DeleteAll(ctx context.Context, analysisID uuid.UUID) error
}

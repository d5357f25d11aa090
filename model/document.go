package model

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Entry represents a source document supplied by the host application.
// Chunks may be pre-computed by the chunking pipeline; if empty, the graph
// builder indexes the whole entry as a single node.
type Entry struct {
	ID        int64     `json:"id"`
	RID       uuid.UUID `json:"rid"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	Source    string    `json:"source,omitempty"`
	Chunks    []*Chunk  `json:"chunks,omitempty"`
	Metadata  Metadata  `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEntryFromFile reads a file and creates an Entry with the file content.
// The title defaults to the filename without extension, source to the path.
func NewEntryFromFile(filePath string, metadata Metadata) (*Entry, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	filename := filepath.Base(filePath)
	title := filename[:len(filename)-len(filepath.Ext(filename))]
	if title == "" {
		title = filename
	}

	return &Entry{
		RID:      uuid.New(),
		Title:    title,
		Source:   filePath,
		Content:  string(content),
		Metadata: metadata,
	}, nil
}

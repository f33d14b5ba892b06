package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session describes the dataset currently loaded for one user of the analyzer.
type Session struct {
	ID         uuid.UUID
	Filename   string
	Format     string
	Size       int
	Messages   int
	Skipped    int
	UploadedAt time.Time
}

// Package store persists scored customer tables for later querying.
package store

import (
	"context"
	"time"

	"github.com/sells-group/rfm-cli/internal/model"
)

// Run describes one pipeline execution whose table was saved.
type Run struct {
	ID        string    `json:"id"`
	Input     string    `json:"input"`
	Reference time.Time `json:"reference_date"`
	Bins      int       `json:"bins"`
	Customers int       `json:"customers"`
	CreatedAt time.Time `json:"created_at"`
}

// Store defines the persistence interface for segmentation results.
type Store interface {
	// SaveRun stores the run and its customer rows atomically and returns
	// the run with its generated ID.
	SaveRun(ctx context.Context, run Run, rows []model.CustomerRFM) (*Run, error)
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListSegment(ctx context.Context, runID, segment string) ([]string, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

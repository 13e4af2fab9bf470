package repositories

import (
	"context"

	"github.com/Michael-Yan-wun/meeting-tools/internal/domain/entities"
)

// MeetingRepository is the durable store of meeting records. Records are
// insert-then-read-only: there are no update or delete operations.
type MeetingRepository interface {
	// Create appends a new record and assigns its ID and CreatedAt.
	Create(ctx context.Context, meeting *entities.Meeting) error
	// ListSummaries returns all records, newest first.
	ListSummaries(ctx context.Context) ([]entities.MeetingSummary, error)
	// GetByID fetches one full record; returns a NotFound error when absent.
	GetByID(ctx context.Context, id uint) (*entities.Meeting, error)
}

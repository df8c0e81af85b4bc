package repository

import (
	"context"

	"social-calendar/domain/model"
)

// IDraft exposes the slice of the draft store the pipeline needs. Draft CRUD
// and approval live in the calendar application, not here.
type IDraft interface {
	GetByID(ctx context.Context, draftID int64) (*model.Draft, error)
	// UpdateStatus persists the aggregated status. Callers must never pass a
	// transition out of the protected "draft" state.
	UpdateStatus(ctx context.Context, draftID int64, status string) error
}

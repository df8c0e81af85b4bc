package repository

import (
	"context"

	"social-calendar/domain/model"
)

// IBrand resolves brand membership for notification routing.
type IBrand interface {
	GetByID(ctx context.Context, brandID int64) (*model.Brand, error)
	// ListActiveManagers returns active admin/editor members with their
	// emails resolved.
	ListActiveManagers(ctx context.Context, brandID int64) ([]*model.BrandMember, error)
}

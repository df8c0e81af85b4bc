package model

import "time"

const (
	BrandStatusActive   = "active"
	MemberStatusActive  = "active"
	MemberRoleAdmin     = "admin"
	MemberRoleEditor    = "editor"
	MemberRoleViewer    = "viewer"
)

// Brand owns drafts and social accounts.
type Brand struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BrandMember links a user to a brand with a role; expiry warnings go to
// active admins and editors.
type BrandMember struct {
	ID      int64  `json:"id"`
	BrandID int64  `json:"brand_id"`
	UserID  int    `json:"user_id"`
	Role    string `json:"role"`
	Status  string `json:"status"`
	Email   string `json:"email"`
}

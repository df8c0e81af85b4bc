package persistence

import (
	"context"
	"database/sql"

	"social-calendar/domain/model"
)

// BrandRepositoryMSSQL is the SQL Server/Azure SQL variant of the brand store.
type BrandRepositoryMSSQL struct{ db *sql.DB }

func NewBrandRepositoryMSSQL(db *sql.DB) *BrandRepositoryMSSQL {
	return &BrandRepositoryMSSQL{db: db}
}

func (r *BrandRepositoryMSSQL) GetByID(ctx context.Context, brandID int64) (*model.Brand, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, status, created_at, updated_at FROM dbo.[brands] WHERE id=@p1`, brandID)
	b := &model.Brand{}
	if err := row.Scan(&b.ID, &b.Name, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *BrandRepositoryMSSQL) ListActiveManagers(ctx context.Context, brandID int64) ([]*model.BrandMember, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT m.id, m.brand_id, m.user_id, m.role, m.status, u.email
        FROM dbo.[brand_members] m
        JOIN dbo.[users] u ON u.id = m.user_id
        WHERE m.brand_id=@p1 AND m.status='active' AND m.role IN ('admin','editor')
        ORDER BY m.id ASC`, brandID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var members []*model.BrandMember
	for rows.Next() {
		m := &model.BrandMember{}
		if err := rows.Scan(&m.ID, &m.BrandID, &m.UserID, &m.Role, &m.Status, &m.Email); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

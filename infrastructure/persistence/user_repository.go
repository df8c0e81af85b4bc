package persistence

import (
	"context"
	"database/sql"
	"time"

	"social-calendar/domain/model"
)

// UserRepository implements user persistence using PostgreSQL
type UserRepository struct{ db *sql.DB }

func NewUserRepository(db *sql.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) GetById(ctx context.Context, id int) (model.User, error) {
	var user model.User
	stmt, err := r.db.PrepareContext(ctx, `SELECT u.id, u.name, u.user_name, u.password, u.created_at, u.updated_at
	FROM public.user AS u
	WHERE u.id = $1`)
	if err != nil {
		return user, err
	}
	defer stmt.Close()
	row := stmt.QueryRowContext(ctx, id)
	if err := row.Scan(&user.ID, &user.Name, &user.UserName, &user.Password, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return user, err
	}
	return user, nil
}

func (r *UserRepository) GetByUserName(ctx context.Context, userName string) (model.User, error) {
	var user model.User
	stmt, err := r.db.PrepareContext(ctx, `SELECT u.id, u.name, u.user_name, u.password, u.created_at, u.updated_at
	FROM public.user AS u
	WHERE u.user_name = $1`)
	if err != nil {
		return user, err
	}
	defer stmt.Close()
	row := stmt.QueryRowContext(ctx, userName)
	if err := row.Scan(&user.ID, &user.Name, &user.UserName, &user.Password, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return user, err
	}
	return user, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user model.User) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `INSERT INTO public.user (name, user_name, password, email, created_at, updated_at) VALUES ($1,$2,$3,$4,$5,$5)`,
		user.Name, user.UserName, user.Password, user.Email, now)
	return err
}

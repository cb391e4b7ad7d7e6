package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AtirathTechnologies/warehouse-hub/internal"
	userDatamodel "github.com/AtirathTechnologies/warehouse-hub/internal/core/datamodel/user"
	"github.com/AtirathTechnologies/warehouse-hub/internal/user"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

const (
	uniqueViolation = "23505"
	userColumns     = "id, email, name, password_hash, role, is_active, created_at, updated_at"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) user.RepositoryAPI {
	return &Repository{db: db}
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	return r.get(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	return r.get(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
}

func (r *Repository) get(ctx context.Context, query string, arg interface{}) (*userDatamodel.User, error) {
	var u userDatamodel.User
	if err := r.db.GetContext(ctx, &u, r.db.Rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *Repository) List(ctx context.Context) ([]*userDatamodel.User, error) {
	var users []*userDatamodel.User
	query := "SELECT " + userColumns + " FROM users ORDER BY role ASC, email ASC"
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *Repository) Create(ctx context.Context, u *userDatamodel.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	query := r.db.Rebind(`INSERT INTO users (email, name, password_hash, role, is_active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	err := r.db.QueryRowxContext(ctx, query, u.Email, u.Name, u.PasswordHash, u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt).Scan(&u.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return internal.ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Deactivate soft-deletes the user. It reports false when no active user has id.
func (r *Repository) Deactivate(ctx context.Context, id int64) (bool, error) {
	query := r.db.Rebind("UPDATE users SET is_active = ?, updated_at = ? WHERE id = ? AND is_active = ?")
	res, err := r.db.ExecContext(ctx, query, false, time.Now().UTC(), id, true)
	if err != nil {
		return false, fmt.Errorf("deactivate user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deactivate user: %w", err)
	}
	return n > 0, nil
}

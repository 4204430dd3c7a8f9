package user

import (
	"context"
	"database/sql"
	"errors"

	"tradeforce/internal/db"

	"github.com/jmoiron/sqlx"
)

var ErrUserNotFound = errors.New("user not found")

const userColumns = "id, email, first_name, last_name, country, password_hash, role, is_active, created_at"

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, email, firstName, lastName, country, passwordHash, role string) (*User, error) {
	u := &User{}
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO users (email, first_name, last_name, country, password_hash, role)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+userColumns,
		email, firstName, lastName, country, passwordHash, role,
	).StructScan(u)
	if err != nil {
		return nil, err
	}

	return u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	u := &User{}
	err := r.db.GetContext(ctx, u,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		email,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return u, nil
}

func (r *repository) FindByID(ctx context.Context, id int) (*User, error) {
	u := &User{}
	err := r.db.GetContext(ctx, u,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return u, nil
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	return db.Exists(ctx, r.db,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`,
		email,
	)
}

// IsActive satisfies wallet.AccountChecker.
func (r *repository) IsActive(ctx context.Context, userID int) (bool, error) {
	var active bool
	err := r.db.GetContext(ctx, &active,
		`SELECT is_active FROM users WHERE id = $1`,
		userID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrUserNotFound
		}
		return false, err
	}

	return active, nil
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]User, error) {
	if limit <= 0 {
		limit = 20
	}

	var users []User
	err := r.db.SelectContext(ctx, &users,
		`SELECT `+userColumns+`
		 FROM users
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}

	return users, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *repository) SetActive(ctx context.Context, id int, active bool) (*User, error) {
	u := &User{}
	err := r.db.QueryRowxContext(ctx,
		`UPDATE users SET is_active = $1 WHERE id = $2 RETURNING `+userColumns,
		active, id,
	).StructScan(u)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return u, nil
}

func (r *repository) SetRole(ctx context.Context, id int, role string) (*User, error) {
	u := &User{}
	err := r.db.QueryRowxContext(ctx,
		`UPDATE users SET role = $1 WHERE id = $2 RETURNING `+userColumns,
		role, id,
	).StructScan(u)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return u, nil
}

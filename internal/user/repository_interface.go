package user

import "context"

type Repository interface {
	Create(ctx context.Context, email, firstName, lastName, country, passwordHash, role string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	IsActive(ctx context.Context, userID int) (bool, error)
	List(ctx context.Context, limit, offset int) ([]User, error)
	Count(ctx context.Context) (int, error)
	SetActive(ctx context.Context, id int, active bool) (*User, error)
	SetRole(ctx context.Context, id int, role string) (*User, error)
}

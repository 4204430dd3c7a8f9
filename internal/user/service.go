package user

import (
	"context"
	"errors"

	"tradeforce/internal/auth"
	"tradeforce/internal/wallet"
)

var (
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is deactivated")
	ErrUnknownRole        = errors.New("role must be user or admin")
)

const defaultCurrency = "USD"

// WalletCreator opens the wallet that accompanies every account. Satisfied by
// wallet.Repository.
type WalletCreator interface {
	CreateWallet(ctx context.Context, userID int, currency string) (*wallet.Wallet, error)
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, string, string, error)
	Login(ctx context.Context, req LoginRequest) (*User, string, string, error)
	GetByID(ctx context.Context, userID int) (*User, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, *User, error)
	List(ctx context.Context, caller auth.Caller, limit, offset int) ([]User, int, error)
	SetActive(ctx context.Context, caller auth.Caller, userID int, active bool) (*User, error)
	SetRole(ctx context.Context, caller auth.Caller, userID int, role string) (*User, error)
}

type service struct {
	repo      Repository
	wallets   WalletCreator
	jwtSecret string
}

func NewService(repo Repository, wallets WalletCreator, jwtSecret string) Service {
	return &service{
		repo:      repo,
		wallets:   wallets,
		jwtSecret: jwtSecret,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, string, string, error) {
	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, "", "", err
	}
	if exists {
		return nil, "", "", ErrEmailExists
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", "", err
	}

	u, err := s.repo.Create(ctx, req.Email, req.FirstName, req.LastName, req.Country, passwordHash, auth.RoleUser)
	if err != nil {
		return nil, "", "", err
	}

	if _, err := s.wallets.CreateWallet(ctx, u.ID, defaultCurrency); err != nil {
		return nil, "", "", err
	}

	accessToken, refreshToken, err := auth.GenerateTokens(
		u.ID,
		u.Email,
		u.Role,
		s.jwtSecret,
		s.jwtSecret,
	)
	if err != nil {
		return nil, "", "", err
	}

	return u, accessToken, refreshToken, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*User, string, string, error) {
	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, "", "", ErrInvalidCredentials
	}

	if !u.IsActive {
		return nil, "", "", ErrAccountDisabled
	}

	accessToken, refreshToken, err := auth.GenerateTokens(
		u.ID,
		u.Email,
		u.Role,
		s.jwtSecret,
		s.jwtSecret,
	)
	if err != nil {
		return nil, "", "", err
	}

	return u, accessToken, refreshToken, nil
}

func (s *service) GetByID(ctx context.Context, userID int) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, *User, error) {
	_, claims, err := auth.RefreshAccessToken(refreshToken, s.jwtSecret, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	u, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", nil, ErrUserNotFound
	}

	newAccessToken, err := auth.GenerateAccessToken(u.ID, u.Email, u.Role, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	return newAccessToken, u, nil
}

func (s *service) List(ctx context.Context, caller auth.Caller, limit, offset int) ([]User, int, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, 0, err
	}

	users, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (s *service) SetActive(ctx context.Context, caller auth.Caller, userID int, active bool) (*User, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	return s.repo.SetActive(ctx, userID, active)
}

func (s *service) SetRole(ctx context.Context, caller auth.Caller, userID int, role string) (*User, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	if role != auth.RoleUser && role != auth.RoleAdmin {
		return nil, ErrUnknownRole
	}
	return s.repo.SetRole(ctx, userID, role)
}

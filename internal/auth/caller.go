package auth

import "errors"

// ErrAdminRequired is returned by RequireAdmin before any store access happens.
var ErrAdminRequired = errors.New("admin role required")

// Caller identifies an authenticated request principal. Services take it
// explicitly so every privileged transition goes through the same check
// regardless of which transport invoked it.
type Caller struct {
	ID   int
	Role string
}

func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// RequireAdmin is the single authorization gate in front of all privileged
// mutations (transaction decisions, verification reviews, account management).
func RequireAdmin(caller Caller) error {
	if !caller.IsAdmin() {
		return ErrAdminRequired
	}
	return nil
}

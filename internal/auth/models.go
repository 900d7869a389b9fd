package auth

import "time"

type Role string

const (
	RoleUser    Role = "USER"
	RoleAdmin   Role = "ADMIN"
	RoleCashier Role = "CASHIER"
)

func ValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleAdmin, RoleCashier:
		return true
	}
	return false
}

// Staff roles may manage orders, payments, products and users.
func (r Role) Staff() bool { return r == RoleAdmin || r == RoleCashier }

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the authenticated caller, threaded explicitly through every
// core operation instead of living in ambient request state.
type Identity struct {
	UserID int64
	Role   Role
}

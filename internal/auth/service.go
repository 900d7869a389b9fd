package auth

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"orange-brew/internal/apperr"
)

type UserRepo interface {
	CreateUser(ctx context.Context, u *User) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUserRole(ctx context.Context, id int64, role Role) (*User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type Service struct {
	Repo      UserRepo
	JWTSecret string
}

// Register creates a customer account. The role is accepted only from the
// server-side allow-list; an omitted role means USER.
func (s *Service) Register(ctx context.Context, name, email, password string, role Role) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, apperr.Validation("name, email and password are required")
	}
	if role == "" {
		role = RoleUser
	}
	if !ValidRole(role) {
		return nil, apperr.Validation("invalid role %q", role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		return nil, apperr.Internal(err, "hash password")
	}
	u := &User{Name: name, Email: email, PasswordHash: string(hash), Role: role}
	return s.Repo.CreateUser(ctx, u)
}

// Login checks credentials and issues a signed session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return "", nil, apperr.Authentication("Invalid credentials")
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, apperr.Authentication("Invalid credentials")
	}
	token, err := signToken(s.JWTSecret, u)
	if err != nil {
		return "", nil, apperr.Internal(err, "sign token")
	}
	return token, u, nil
}

func (s *Service) Verify(token string) (Identity, error) {
	return verifyToken(s.JWTSecret, token)
}

func (s *Service) Me(ctx context.Context, actor Identity) (*User, error) {
	return s.Repo.GetUserByID(ctx, actor.UserID)
}

func (s *Service) ListUsers(ctx context.Context, actor Identity) ([]User, error) {
	if actor.Role != RoleAdmin {
		return nil, apperr.Authorization("admin role required")
	}
	return s.Repo.ListUsers(ctx)
}

func (s *Service) CreateUser(ctx context.Context, actor Identity, name, email, password string, role Role) (*User, error) {
	if actor.Role != RoleAdmin {
		return nil, apperr.Authorization("admin role required")
	}
	return s.Register(ctx, name, email, password, role)
}

func (s *Service) UpdateUserRole(ctx context.Context, actor Identity, id int64, role Role) (*User, error) {
	if actor.Role != RoleAdmin {
		return nil, apperr.Authorization("admin role required")
	}
	if !ValidRole(role) {
		return nil, apperr.Validation("invalid role %q", role)
	}
	return s.Repo.UpdateUserRole(ctx, id, role)
}

func (s *Service) DeleteUser(ctx context.Context, actor Identity, id int64) error {
	if actor.Role != RoleAdmin {
		return apperr.Authorization("admin role required")
	}
	return s.Repo.DeleteUser(ctx, id)
}

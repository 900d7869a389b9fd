package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"orange-brew/internal/apperr"
)

const tokenTTL = 24 * time.Hour

func signToken(secret string, u *User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": u.ID,
		"role":    string(u.Role),
		"exp":     time.Now().Add(tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

func verifyToken(secret, token string) (Identity, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.Authentication("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, apperr.Authentication("invalid or expired token")
	}
	m, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, apperr.Authentication("invalid token claims")
	}
	uid, ok := m["user_id"].(float64)
	if !ok {
		return Identity{}, apperr.Authentication("invalid token claims")
	}
	role, _ := m["role"].(string)
	if !ValidRole(Role(role)) {
		return Identity{}, apperr.Authentication("invalid token claims")
	}
	return Identity{UserID: int64(uid), Role: Role(role)}, nil
}

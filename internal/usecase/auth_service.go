package usecase

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"norahair-backend/internal/domain"
)

type AdminRepo interface {
	PutAdmin(*domain.AdminUser) error
	GetAdminByUsername(username string) (*domain.AdminUser, bool)
}

type AuthService struct {
	Repo      AdminRepo
	JWTSecret string
}

const tokenTTL = 7 * 24 * time.Hour

// Login checks the dashboard credentials and issues a session token.
func (s *AuthService) Login(username, password string) (string, error) {
	if s.JWTSecret == "" {
		return "", ErrNotConfigured("jwt secret")
	}
	u, ok := s.Repo.GetAdminByUsername(username)
	if !ok {
		return "", ErrUnauthorized("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", ErrUnauthorized("invalid credentials")
	}
	claims := jwt.MapClaims{
		"admin_id": u.ID,
		"username": u.Username,
		"exp":      time.Now().Add(tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.JWTSecret))
}

// Verify returns the admin id and username carried by a valid token.
func (s *AuthService) Verify(token string) (string, string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return []byte(s.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return "", "", ErrUnauthorized("invalid token")
	}
	m, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", ErrUnauthorized("invalid token claims")
	}
	id, _ := m["admin_id"].(string)
	username, _ := m["username"].(string)
	return id, username, nil
}

// EnsureAdmin creates the dashboard user on first boot. An existing user is
// left untouched so a weak startup env var cannot clobber a rotated password.
func (s *AuthService) EnsureAdmin(username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	if _, ok := s.Repo.GetAdminByUsername(username); ok {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.Repo.PutAdmin(&domain.AdminUser{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	})
}

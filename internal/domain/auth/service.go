package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type StoreAPI interface {
	FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error)
	UpdateLastLogin(ctx context.Context, userID string) error
}

type Service struct {
	store  StoreAPI
	secret string
	ttl    time.Duration
}

func NewService(store StoreAPI, secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Service{store: store, secret: secret, ttl: ttl}
}

// Login verifies the credentials and issues a bearer token. Unknown users
// and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, Actor, error) {
	user, err := s.store.FindActiveUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", Actor{}, ErrInvalidCredentials
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return "", Actor{}, ErrInvalidCredentials
	}

	actor := Actor{UserID: user.ID, EmployeeID: user.EmployeeID, DivisionID: user.DivisionID, Role: user.Role}
	token, err := GenerateToken(s.secret, actor, s.ttl)
	if err != nil {
		return "", Actor{}, err
	}
	if err := s.store.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("last login update failed", "err", err)
	}
	return token, actor, nil
}

func (s *Service) ParseToken(token string) (Actor, error) {
	claims, err := ParseToken(s.secret, token)
	if err != nil {
		return Actor{}, err
	}
	return claims.Actor(), nil
}

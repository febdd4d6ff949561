package service

import (
	"context"
	"errors"
	"time"

	"ai-butler-be/internal/dto"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

// authService guards the single-user deployment: one username, one
// bcrypt hash, both from configuration.
type authService struct {
	username     string
	passwordHash string
	jwtSecret    string
}

func NewAuthService(username, passwordHash, jwtSecret string) IAuthService {
	return &authService{
		username:     username,
		passwordHash: passwordHash,
		jwtSecret:    jwtSecret,
	}
}

func (s *authService) Login(_ context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if req.Username != s.username {
		return nil, errors.New("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid credentials")
	}

	claims := jwt.MapClaims{
		"sub": s.username,
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{AccessToken: signed}, nil
}

package service

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"ai-butler-be/internal/dto"
)

func TestLoginIssuesToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret-password"), bcrypt.MinCost)
	require.NoError(t, err)
	svc := NewAuthService("master", string(hash), "jwt-secret")

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "master", Password: "secret-password"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)

	token, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte("jwt-secret"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "master", claims["sub"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret-password"), bcrypt.MinCost)
	require.NoError(t, err)
	svc := NewAuthService("master", string(hash), "jwt-secret")

	_, err = svc.Login(context.Background(), &dto.LoginRequest{Username: "master", Password: "wrong"})
	assert.EqualError(t, err, "invalid credentials")

	_, err = svc.Login(context.Background(), &dto.LoginRequest{Username: "intruder", Password: "secret-password"})
	assert.EqualError(t, err, "invalid credentials")
}

//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"treatment-booking/internal/pkg/config"
	"treatment-booking/internal/pkg/jwt"

	"github.com/stretchr/testify/require"
)

type JWTHelper struct {
	cfg config.JWTConfig
}

func NewJWTHelper(cfg config.JWTConfig) *JWTHelper {
	return &JWTHelper{cfg: cfg}
}

func (h *JWTHelper) GenerateToken(t *testing.T, subject string) string {
	t.Helper()
	duration, err := time.ParseDuration(h.cfg.Duration)
	require.NoError(t, err)
	token, err := jwt.NewService(h.cfg.Secret, h.cfg.Issuer, duration).GenerateToken(subject)
	require.NoError(t, err)
	return token
}

// CreateExpiredToken is signed with the right key but already past its
// expiry.
func (h *JWTHelper) CreateExpiredToken(t *testing.T, subject string) string {
	t.Helper()
	token, err := jwt.NewService(h.cfg.Secret, h.cfg.Issuer, -time.Minute).GenerateToken(subject)
	require.NoError(t, err)
	return token
}

// CreateForeignToken is signed with a different key.
func (h *JWTHelper) CreateForeignToken(t *testing.T, subject string) string {
	t.Helper()
	token, err := jwt.NewService("some-other-secret", h.cfg.Issuer, time.Hour).GenerateToken(subject)
	require.NoError(t, err)
	return token
}

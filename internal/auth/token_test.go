package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamilakurskaa/TrustFlow/internal/domain"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue(42)
	require.NoError(t, err)

	userID, err := issuer.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), userID)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.IssueWithTTL(42, -time.Minute)
	require.NoError(t, err)

	_, err = issuer.Resolve(token)
	assert.ErrorIs(t, err, domain.ErrExpiredToken)
}

func TestTokenIssuer_Malformed(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Resolve(tt.token)
			assert.ErrorIs(t, err, domain.ErrMalformedToken)
		})
	}
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	other := NewTokenIssuer("other-secret", time.Hour)

	token, err := issuer.Issue(42)
	require.NoError(t, err)

	_, err = other.Resolve(token)
	assert.ErrorIs(t, err, domain.ErrMalformedToken)
}

package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, err := tm.GenerateToken(42)
	require.NoError(t, err)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("a", time.Hour).GenerateToken(1)
	require.NoError(t, err)

	_, err = NewTokenManager("b", time.Hour).ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBlacklistedTokenIsRejected(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	token, err := tm.GenerateToken(7)
	require.NoError(t, err)

	tm.Blacklist(token)

	_, err = tm.ParseToken(token)
	assert.ErrorIs(t, err, ErrBlacklistedToken)
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$0.00", FormatCurrency(0, "$"))
	assert.Equal(t, "$15,000.50", FormatCurrency(15000.5, "$"))
	assert.Equal(t, "-$1,234,567.89", FormatCurrency(-1234567.891, "$"))
	assert.Equal(t, "€999.99", FormatCurrency(999.99, "€"))
}

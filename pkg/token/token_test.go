package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndRefresh(t *testing.T) {
	issuer := NewIssuer("secret", 15*time.Minute, 24*time.Hour)

	pair, err := issuer.Issue("dev-1")
	require.NoError(t, err)
	assert.Equal(t, 900, pair.ExpiresIn)

	uid, err := issuer.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "dev-1", uid)

	_, err = issuer.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestValidateRefreshToken_Rejects(t *testing.T) {
	issuer := NewIssuer("secret", time.Minute, time.Hour)
	pair, err := issuer.Issue("dev-1")
	require.NoError(t, err)

	other := NewIssuer("other", time.Minute, time.Hour)
	_, err = other.ValidateRefreshToken(pair.RefreshToken)
	assert.Error(t, err)

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = issuer.ValidateRefreshToken(pair.RefreshToken)
	assert.Error(t, err)
}

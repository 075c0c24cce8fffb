package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/title-review-api/internal/model"
)

const testSecret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	u := model.User{
		ID:          42,
		Username:    "reviewer",
		Role:        model.RoleModerator,
		IsSuperuser: true,
	}

	tok, err := NewAccessToken(testSecret, u, 15)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Token)
	assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), tok.Exp, 5*time.Second)

	actor, err := ParseAccessToken(testSecret, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), actor.ID)
	assert.Equal(t, "reviewer", actor.Username)
	assert.Equal(t, model.RoleModerator, actor.Role)
	assert.True(t, actor.Superuser)
	assert.True(t, actor.Authenticated)
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	tok, err := NewAccessToken(testSecret, model.User{ID: 1, Username: "u", Role: model.RoleUser}, 15)
	require.NoError(t, err)

	_, err = ParseAccessToken("other-secret", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	_, err := ParseAccessToken(testSecret, "not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseAccessToken(testSecret, "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	tok, err := NewAccessToken(testSecret, model.User{ID: 1, Username: "u", Role: model.RoleUser}, -1)
	require.NoError(t, err)

	_, err = ParseAccessToken(testSecret, tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

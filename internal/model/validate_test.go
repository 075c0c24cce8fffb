package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	assert.ErrorIs(t, ValidateUsername("me"), ErrReservedUsername)
	assert.NoError(t, ValidateUsername("Me2"))
	assert.NoError(t, ValidateUsername("someone"))
}

func TestValidateYear(t *testing.T) {
	now := time.Now().UTC().Year()
	assert.NoError(t, ValidateYear(now))
	assert.NoError(t, ValidateYear(1895))
	assert.Error(t, ValidateYear(now+1))
}

func TestValidateScore(t *testing.T) {
	for s := ScoreMin; s <= ScoreMax; s++ {
		assert.NoError(t, ValidateScore(s))
	}
	assert.ErrorIs(t, ValidateScore(ScoreMin-1), ErrScoreOutOfRange)
	assert.ErrorIs(t, ValidateScore(ScoreMax+1), ErrScoreOutOfRange)
}

func TestActorCapabilities(t *testing.T) {
	anon := Actor{}
	assert.False(t, anon.Can(CapAdmin))
	assert.False(t, anon.Can(CapModerate))

	user := Actor{ID: 1, Role: RoleUser, Authenticated: true}
	assert.False(t, user.Can(CapAdmin))
	assert.False(t, user.Can(CapModerate))

	mod := Actor{ID: 2, Role: RoleModerator, Authenticated: true}
	assert.False(t, mod.Can(CapAdmin))
	assert.True(t, mod.Can(CapModerate))

	admin := Actor{ID: 3, Role: RoleAdmin, Authenticated: true}
	assert.True(t, admin.Can(CapAdmin))
	assert.False(t, admin.Can(CapModerate))

	// The superuser flag grants admin regardless of role, but not the
	// moderator capability.
	su := Actor{ID: 4, Role: RoleUser, Superuser: true, Authenticated: true}
	assert.True(t, su.Can(CapAdmin))
	assert.False(t, su.Can(CapModerate))

	// An unauthenticated actor with a role set is still powerless.
	fake := Actor{ID: 5, Role: RoleAdmin}
	assert.False(t, fake.Can(CapAdmin))
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleUser))
	assert.True(t, ValidRole(RoleModerator))
	assert.True(t, ValidRole(RoleAdmin))
	assert.False(t, ValidRole("owner"))
	assert.False(t, ValidRole(""))
}

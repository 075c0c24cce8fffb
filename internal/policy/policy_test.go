package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/title-review-api/internal/model"
)

var (
	anon      = model.Actor{}
	reader    = model.Actor{ID: 10, Role: model.RoleUser, Authenticated: true}
	author    = model.Actor{ID: 42, Role: model.RoleUser, Authenticated: true}
	moderator = model.Actor{ID: 7, Role: model.RoleModerator, Authenticated: true}
	admin     = model.Actor{ID: 1, Role: model.RoleAdmin, Authenticated: true}
	superuser = model.Actor{ID: 2, Role: model.RoleUser, Superuser: true, Authenticated: true}
)

const ownerID = 42

func TestReadsAreOpenToEveryone(t *testing.T) {
	kinds := []Kind{KindCategory, KindGenre, KindTitle, KindReview, KindComment}
	actors := []model.Actor{anon, reader, moderator, admin, superuser}

	for _, k := range kinds {
		for _, a := range actors {
			assert.Equal(t, Allow, Decide(a, VerbList, k, 0))
			assert.Equal(t, Allow, Decide(a, VerbRetrieve, k, 0))
		}
	}
}

func TestCatalogWritesNeedAdmin(t *testing.T) {
	kinds := []Kind{KindCategory, KindGenre, KindTitle}
	verbs := []Verb{VerbCreate, VerbUpdate, VerbDelete}

	for _, k := range kinds {
		for _, v := range verbs {
			assert.Equal(t, Deny, Decide(anon, v, k, 0))
			assert.Equal(t, Deny, Decide(reader, v, k, 0))
			assert.Equal(t, Deny, Decide(moderator, v, k, 0))
			assert.Equal(t, Allow, Decide(admin, v, k, 0))
			assert.Equal(t, Allow, Decide(superuser, v, k, 0))
		}
	}
}

func TestFeedbackCreateNeedsAuthentication(t *testing.T) {
	for _, k := range []Kind{KindReview, KindComment} {
		assert.Equal(t, Deny, Decide(anon, VerbCreate, k, 0))
		assert.Equal(t, Allow, Decide(reader, VerbCreate, k, 0))
		assert.Equal(t, Allow, Decide(moderator, VerbCreate, k, 0))
		assert.Equal(t, Allow, Decide(admin, VerbCreate, k, 0))
	}
}

func TestFeedbackEditsNeedOwnershipOrPrivilege(t *testing.T) {
	for _, k := range []Kind{KindReview, KindComment} {
		for _, v := range []Verb{VerbUpdate, VerbDelete} {
			assert.Equal(t, Deny, Decide(anon, v, k, ownerID))
			assert.Equal(t, Deny, Decide(reader, v, k, ownerID), "other users cannot touch it")
			assert.Equal(t, Allow, Decide(author, v, k, ownerID), "the author can")
			assert.Equal(t, Allow, Decide(moderator, v, k, ownerID))
			assert.Equal(t, Allow, Decide(admin, v, k, ownerID))
			assert.Equal(t, Allow, Decide(superuser, v, k, ownerID))
		}
	}
}

func TestUserManagementNeedsAdmin(t *testing.T) {
	verbs := []Verb{VerbList, VerbRetrieve, VerbCreate, VerbUpdate, VerbDelete}
	for _, v := range verbs {
		assert.Equal(t, Deny, Decide(anon, v, KindUser, 0))
		assert.Equal(t, Deny, Decide(reader, v, KindUser, 0))
		assert.Equal(t, Deny, Decide(moderator, v, KindUser, 0))
		assert.Equal(t, Allow, Decide(admin, v, KindUser, 0))
		assert.Equal(t, Allow, Decide(superuser, v, KindUser, 0))
	}
}

func TestSuperuserFlagEqualsAdminRole(t *testing.T) {
	// A superuser with a plain role gets every admin decision.
	assert.Equal(t, Allow, Decide(superuser, VerbCreate, KindTitle, 0))
	assert.Equal(t, Allow, Decide(superuser, VerbDelete, KindUser, 0))

	// But the moderator capability is role-bound; a superuser passes the
	// feedback edit rule through the admin capability instead.
	assert.Equal(t, Allow, Decide(superuser, VerbDelete, KindReview, ownerID))
}

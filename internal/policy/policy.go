// Package policy holds the access decision function for the API. It is a
// pure mapping from (actor, verb, resource kind, resource owner) to
// allow/deny with no side effects, so route middleware and handlers share
// one source of truth and tests can enumerate the whole grid.
package policy

import "github.com/iliyamo/title-review-api/internal/model"

// Verb classifies an operation the way HTTP methods would, without tying
// the decision to the transport layer.
type Verb int

const (
	VerbList Verb = iota
	VerbRetrieve
	VerbCreate
	VerbUpdate
	VerbDelete
)

// read reports whether the verb only observes state.
func (v Verb) read() bool { return v == VerbList || v == VerbRetrieve }

// Kind names the resource class a decision is about.
type Kind int

const (
	KindCategory Kind = iota
	KindGenre
	KindTitle
	KindReview
	KindComment
	KindUser
)

// Decision is the outcome of Decide.
type Decision int

const (
	Deny Decision = iota
	Allow
)

// Decide evaluates the access rules in precedence order and returns the
// first match. ownerID identifies the resource's author and only matters
// for updates/deletes on reviews and comments; pass 0 when the resource
// has no owner.
//
// Rules:
//  1. reads on catalog and feedback resources are open to everyone
//  2. writes on categories, genres and titles need the admin capability
//  3. creating a review or comment needs any authenticated actor
//  4. updating or deleting a review or comment needs the author,
//     a moderator or an admin
//  5. anything touching users needs the admin capability
//  6. everything else is denied
func Decide(actor model.Actor, verb Verb, kind Kind, ownerID uint64) Decision {
	switch kind {
	case KindCategory, KindGenre, KindTitle, KindReview, KindComment:
		if verb.read() {
			return Allow
		}
	}

	switch kind {
	case KindCategory, KindGenre, KindTitle:
		if actor.Can(model.CapAdmin) {
			return Allow
		}
		return Deny

	case KindReview, KindComment:
		if !actor.Authenticated {
			return Deny
		}
		if verb == VerbCreate {
			// Ownership is established by the act of creation.
			return Allow
		}
		if actor.ID == ownerID || actor.Can(model.CapModerate) || actor.Can(model.CapAdmin) {
			return Allow
		}
		return Deny

	case KindUser:
		if actor.Can(model.CapAdmin) {
			return Allow
		}
		return Deny
	}

	return Deny
}

package model

import "time"

// Role values stored in users.role. The column is a plain string so the
// application owns the enum; ValidRole guards every write path.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// ValidRole reports whether r is one of the known role names.
func ValidRole(r string) bool {
	return r == RoleUser || r == RoleModerator || r == RoleAdmin
}

// User represents an application user record as stored in the `users`
// table. The json tags are omitted because these structs are used by the
// repository layer; handlers define separate response types.
//
// Fields:
//  ID               – primary key identifier of the user.
//  Username         – unique account name.
//  Email            – unique email address.
//  Role             – role name (user, moderator, admin).
//  Bio              – free-form profile text.
//  FirstName        – optional given name.
//  LastName         – optional family name.
//  ConfirmationCode – bcrypt hash of the last emailed code; empty once
//                     exchanged for a token.
//  IsSuperuser      – grants admin capability independently of Role.
//  CreatedAt        – timestamp of creation.
//  UpdatedAt        – timestamp of last update.
type User struct {
	ID               uint64
	Username         string
	Email            string
	Role             string
	Bio              string
	FirstName        string
	LastName         string
	ConfirmationCode string
	IsSuperuser      bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

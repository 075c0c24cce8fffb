package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/title-review-api/internal/model"
)

// UserRepo provides persistence for users. Role and confirmation-code
// mutation happens only here; no other repository touches the users table
// beyond read joins.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,username,email,role,bio,first_name,last_name,confirmation_code,is_superuser,created_at,updated_at"

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.Bio, &u.FirstName,
		&u.LastName, &u.ConfirmationCode, &u.IsSuperuser, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts a user with the default role and returns the stored row.
// Duplicate username/email races surface as ErrUsernameExists or
// ErrEmailExists based on which key fired.
func (r *UserRepo) Create(ctx context.Context, username, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, role) VALUES (?,?,?)",
		username, email, model.RoleUser)
	if err != nil {
		if isDuplicate(err) {
			if strings.Contains(err.Error(), "email") {
				return model.User{}, ErrEmailExists
			}
			return model.User{}, ErrUsernameExists
		}
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// CreateWithProfile inserts a user with an explicit role and profile in
// one statement, used by admin user creation so no half-initialized row
// can survive a partial failure.
func (r *UserRepo) CreateWithProfile(ctx context.Context, username, email, role, firstName, lastName, bio string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, role, first_name, last_name, bio) VALUES (?,?,?,?,?,?)",
		username, email, role, firstName, lastName, bio)
	if err != nil {
		if isDuplicate(err) {
			if strings.Contains(err.Error(), "email") {
				return model.User{}, ErrEmailExists
			}
			return model.User{}, ErrUsernameExists
		}
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByUsername fetches a user by exact username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// List returns users ordered by id plus the total count for pagination.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]model.User, int64, error) {
	var total int64
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]model.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// ProfilePatch carries optional profile fields for partial updates. Nil
// pointers mean "leave unchanged". Role is only honored by UpdateByAdmin.
type ProfilePatch struct {
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *string
}

// buildUserSet assembles the SET clause for a partial update.
func buildUserSet(p ProfilePatch, allowRole bool) (string, []any) {
	set := []string{}
	args := []any{}
	if p.Email != nil {
		set = append(set, "email=?")
		args = append(args, strings.ToLower(strings.TrimSpace(*p.Email)))
	}
	if p.FirstName != nil {
		set = append(set, "first_name=?")
		args = append(args, *p.FirstName)
	}
	if p.LastName != nil {
		set = append(set, "last_name=?")
		args = append(args, *p.LastName)
	}
	if p.Bio != nil {
		set = append(set, "bio=?")
		args = append(args, *p.Bio)
	}
	if allowRole && p.Role != nil {
		set = append(set, "role=?")
		args = append(args, *p.Role)
	}
	return strings.Join(set, ", "), args
}

// UpdateProfile applies a self-service partial update. The role field in
// the patch is ignored here: only UpdateByAdmin may change roles.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, p ProfilePatch) (model.User, error) {
	set, args := buildUserSet(p, false)
	if set == "" {
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	if _, err := r.DB.ExecContext(ctx, "UPDATE users SET "+set+" WHERE id=?", args...); err != nil {
		if isDuplicate(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

// UpdateByAdmin applies an administrative partial update, including role
// changes, addressed by username.
func (r *UserRepo) UpdateByAdmin(ctx context.Context, username string, p ProfilePatch) (model.User, error) {
	u, err := r.GetByUsername(ctx, username)
	if err != nil {
		return model.User{}, err
	}
	set, args := buildUserSet(p, true)
	if set == "" {
		return u, nil
	}
	args = append(args, u.ID)
	if _, err := r.DB.ExecContext(ctx, "UPDATE users SET "+set+" WHERE id=?", args...); err != nil {
		if isDuplicate(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	return r.GetByID(ctx, u.ID)
}

// SetConfirmationCode stores the bcrypt hash of a freshly issued code.
// Each signup overwrites the previous hash, rotating the code.
func (r *UserRepo) SetConfirmationCode(ctx context.Context, id uint64, hash string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET confirmation_code=? WHERE id=?", hash, id)
	return err
}

// ClearConfirmationCode invalidates the stored code after a successful
// token exchange, making each code single use.
func (r *UserRepo) ClearConfirmationCode(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET confirmation_code='' WHERE id=?", id)
	return err
}

// Delete removes a user by username. Reviews and comments cascade at the
// store level.
func (r *UserRepo) Delete(ctx context.Context, username string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE username=?", username)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

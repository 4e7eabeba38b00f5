package zombiezen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/caasmo/identityoutbox/db"
	"github.com/caasmo/identityoutbox/domain/user"
	"github.com/caasmo/identityoutbox/uow"
	"github.com/google/uuid"
)

type repositoryFactory struct {
	tx *tx
}

func (f *repositoryFactory) Users() uow.UserRepository {
	return &userRepository{tx: f.tx}
}

type userRepository struct {
	tx *tx
}

var _ uow.UserRepository = (*userRepository)(nil)

const userSelectColumns = `id, username, email, password_hash, role, status, suspend_reason, created_at, updated_at`

func scanUser(stmt *sqlite.Stmt) (*user.User, error) {
	id, err := uuid.Parse(stmt.GetText("id"))
	if err != nil {
		return nil, fmt.Errorf("zombiezen: parse user id: %w", err)
	}

	createdAt, err := time.Parse(time.RFC3339, stmt.GetText("created_at"))
	if err != nil {
		return nil, fmt.Errorf("zombiezen: parse created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339, stmt.GetText("updated_at"))
	if err != nil {
		return nil, fmt.Errorf("zombiezen: parse updated_at: %w", err)
	}

	email := stmt.GetText("email")
	status := stmt.GetText("status")
	reason := stmt.GetText("suspend_reason")

	var emailVal user.Email
	if status == "active" {
		emailVal = user.NewVerifiedEmail(email)
	} else {
		emailVal = user.NewUnverifiedEmail(email)
	}

	state, err := user.StateFromTag(status, emailVal, reason)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", db.ErrUnknownStatus, status)
	}

	role := user.Role(stmt.GetText("role"))

	return user.Reconstruct(id, stmt.GetText("username"), stmt.GetText("password_hash"), role, createdAt, updatedAt, state), nil
}

func (r *userRepository) findOneBy(ctx context.Context, column, value string) (*user.User, error) {
	var found *user.User
	var scanErr error

	err := sqlitex.Execute(r.tx.conn,
		fmt.Sprintf(`SELECT %s FROM users WHERE %s = ? LIMIT 1`, userSelectColumns, column),
		&sqlitex.ExecOptions{
			Args: []any{value},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found, scanErr = scanUser(stmt)
				return scanErr
			},
		})
	if err != nil {
		return nil, err
	}
	if scanErr != nil {
		return nil, scanErr
	}
	if found == nil {
		return nil, db.ErrNotFound
	}
	return found, nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	return r.findOneBy(ctx, "id", id)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOneBy(ctx, "email", email)
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.findOneBy(ctx, "username", username)
}

func (r *userRepository) FindAll(ctx context.Context) ([]*user.User, error) {
	var results []*user.User
	var scanErr error

	err := sqlitex.Execute(r.tx.conn,
		fmt.Sprintf(`SELECT %s FROM users ORDER BY created_at ASC`, userSelectColumns),
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				u, err := scanUser(stmt)
				if err != nil {
					scanErr = err
					return err
				}
				results = append(results, u)
				return nil
			},
		})
	if err != nil {
		return nil, err
	}
	if scanErr != nil {
		return nil, scanErr
	}
	return results, nil
}

// Save upserts the aggregate keyed by id, maps unique-constraint violations
// to db.ErrUsernameConflict/db.ErrEmailConflict (spec.md §4.2), and tracks
// the aggregate so its events are flushed at commit time.
func (r *userRepository) Save(ctx context.Context, u *user.User) error {
	status := u.State().Tag()
	reason := ""
	if s, ok := u.State().(user.SuspendedByAdmin); ok {
		reason = s.Reason
	}

	err := sqlitex.Execute(r.tx.conn,
		`INSERT INTO users (id, username, email, password_hash, role, status, suspend_reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			email = excluded.email,
			password_hash = excluded.password_hash,
			role = excluded.role,
			status = excluded.status,
			suspend_reason = excluded.suspend_reason,
			updated_at = excluded.updated_at`,
		&sqlitex.ExecOptions{
			Args: []any{
				u.ID().String(),
				u.Username(),
				u.Email().Address(),
				u.PasswordHash(),
				string(u.Role()),
				status,
				reason,
				u.CreatedAt().Format(time.RFC3339),
				u.UpdatedAt().Format(time.RFC3339),
			},
		})
	if err != nil {
		return mapConstraintError(err)
	}

	r.tx.tracker.Track(u)
	return nil
}

func mapConstraintError(err error) error {
	var sqliteErr sqlite.Error
	if !asSqliteError(err, &sqliteErr) {
		return err
	}
	if sqliteErr.Code != sqlite.ResultConstraintUnique {
		return err
	}
	msg := sqliteErr.Error()
	switch {
	case strings.Contains(msg, "users_username_key") || strings.Contains(msg, "users.username"):
		return fmt.Errorf("%w: %v", db.ErrUsernameConflict, err)
	case strings.Contains(msg, "users_email_key") || strings.Contains(msg, "users.email"):
		return fmt.Errorf("%w: %v", db.ErrEmailConflict, err)
	default:
		return err
	}
}

func asSqliteError(err error, target *sqlite.Error) bool {
	for err != nil {
		if se, ok := err.(sqlite.Error); ok {
			*target = se
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

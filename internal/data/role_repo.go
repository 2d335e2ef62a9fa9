package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/saferide/dispatch-web/internal/data/pgxutil"
	domainauth "github.com/saferide/dispatch-web/internal/domain/auth"
	"github.com/saferide/dispatch-web/internal/domain/model"
	apperrors "github.com/saferide/dispatch-web/internal/errors"
)

const (
	roleColumns       = `subject, role, email, created_at, updated_at`
	roleChangeColumns = `id, subject, old_role, new_role, changed_by, changed_at`

	defaultRoleListLimit = 100
	maxRoleListLimit     = 1000
)

// RoleRepo is the Postgres-backed authoritative role store.
type RoleRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewRoleRepo creates a new RoleRepo with real time provider.
func NewRoleRepo(db *sql.DB) *RoleRepo {
	return &RoleRepo{DB: db, timeProvider: RealTimeProvider{}}
}

// NewRoleRepoWithTimeProvider creates a new RoleRepo with a custom time provider (useful for tests).
func NewRoleRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *RoleRepo {
	return &RoleRepo{DB: db, timeProvider: tp}
}

// RoleFor returns the role stored for subject. A missing row is a NotFound
// AppError; a stored value that is not a known role is an Internal AppError.
func (r *RoleRepo) RoleFor(ctx context.Context, subject string) (domainauth.Role, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", apperrors.ValidationField("subject", "subject is required")
	}

	var raw string
	if err := r.DB.QueryRowContext(ctx, `SELECT role FROM member_roles WHERE subject = $1`, subject).Scan(&raw); err != nil {
		return "", apperrors.MapDBError(err)
	}
	role, err := domainauth.ParseRole(raw)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "stored role is not recognized")
	}
	return role, nil
}

// Get returns the full assignment for subject.
func (r *RoleRepo) Get(ctx context.Context, subject string) (*model.RoleAssignment, error) {
	var out model.RoleAssignment
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+roleColumns+` FROM member_roles WHERE subject = $1`, subject)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.RoleAssignment])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// List returns assignments ordered by subject.
func (r *RoleRepo) List(ctx context.Context, opts model.ListRolesOptions) ([]model.RoleAssignment, error) {
	if opts.Role != "" && !opts.Role.Valid() {
		return nil, apperrors.ValidationField("role", "role must be one of: ADMIN DISPATCHER DRIVER MEMBER")
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultRoleListLimit
	}
	limit = min(limit, maxRoleListLimit)
	offset := max(opts.Offset, 0)

	var out []model.RoleAssignment
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+roleColumns+`
			FROM member_roles
			WHERE ($1 = '' OR role = $1)
			ORDER BY subject
			LIMIT $2 OFFSET $3`,
			string(opts.Role), limit, offset)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.RoleAssignment])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// Set upserts an assignment and records the change in the audit log atomically.
func (r *RoleRepo) Set(ctx context.Context, req model.SetRoleRequest) (*model.RoleAssignment, error) {
	req.Normalize()
	if err := model.Validate(req); err != nil {
		return nil, err
	}

	now := r.timeProvider.Now().UTC()
	var email *string
	if req.Email != "" {
		email = &req.Email
	}

	var out model.RoleAssignment
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		// A first assignment claims the row; concurrent claims block on the
		// primary key and then take the update path with the winner's role as old_role.
		rows, err := tx.Query(ctx, `
			INSERT INTO member_roles (subject, role, email, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $4)
			ON CONFLICT (subject) DO NOTHING
			RETURNING `+roleColumns,
			req.Subject, req.Role, email, now)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.RoleAssignment])
		switch {
		case err == nil:
			return recordRoleChange(ctx, tx, roleChange{subject: req.Subject, newRole: &req.Role, by: req.ChangedBy, at: now})
		case !errors.Is(err, pgx.ErrNoRows):
			return err
		}

		oldRole, err := lockCurrentRole(ctx, tx, req.Subject)
		if err != nil {
			return err
		}
		rows, err = tx.Query(ctx, `
			UPDATE member_roles
			SET role = $2,
			    email = COALESCE($3, email),
			    updated_at = $4
			WHERE subject = $1
			RETURNING `+roleColumns,
			req.Subject, req.Role, email, now)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.RoleAssignment])
		if err != nil {
			return err
		}

		if oldRole != nil && *oldRole == req.Role {
			return nil
		}
		return recordRoleChange(ctx, tx, roleChange{subject: req.Subject, oldRole: oldRole, newRole: &req.Role, by: req.ChangedBy, at: now})
	}})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// Delete removes the assignment for subject. It reports whether a row existed.
func (r *RoleRepo) Delete(ctx context.Context, subject, changedBy string) (bool, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return false, apperrors.ValidationField("subject", "subject is required")
	}
	if strings.TrimSpace(changedBy) == "" {
		return false, apperrors.ValidationField("changedBy", "changedBy is required")
	}

	deleted := false
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		oldRole, err := lockCurrentRole(ctx, tx, subject)
		if err != nil || oldRole == nil {
			return err
		}
		if _, err = tx.Exec(ctx, `DELETE FROM member_roles WHERE subject = $1`, subject); err != nil {
			return err
		}
		deleted = true
		return recordRoleChange(ctx, tx, roleChange{subject: subject, oldRole: oldRole, by: changedBy, at: r.timeProvider.Now().UTC()})
	}})
	if err != nil {
		return false, apperrors.MapDBError(err)
	}
	return deleted, nil
}

// History returns the most recent audit entries for subject, newest first.
func (r *RoleRepo) History(ctx context.Context, subject string, limit int) ([]model.RoleChange, error) {
	if limit <= 0 {
		limit = defaultRoleListLimit
	}
	var out []model.RoleChange
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+roleChangeColumns+`
			FROM member_role_changes
			WHERE subject = $1
			ORDER BY changed_at DESC, id DESC
			LIMIT $2`, subject, min(limit, maxRoleListLimit))
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.RoleChange])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// lockCurrentRole returns the subject's current role (nil when unassigned), holding a row lock.
func lockCurrentRole(ctx context.Context, tx pgx.Tx, subject string) (*string, error) {
	var role string
	err := tx.QueryRow(ctx, `SELECT role FROM member_roles WHERE subject = $1 FOR UPDATE`, subject).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock role: %w", err)
	}
	return &role, nil
}

type roleChange struct {
	subject string
	oldRole *string
	newRole *string
	by      string
	at      time.Time
}

func recordRoleChange(ctx context.Context, tx pgx.Tx, c roleChange) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO member_role_changes (subject, old_role, new_role, changed_by, changed_at)
		VALUES ($1, $2, $3, $4, $5)`,
		c.subject, c.oldRole, c.newRole, c.by, c.at)
	if err != nil {
		return fmt.Errorf("record role change: %w", err)
	}
	return nil
}

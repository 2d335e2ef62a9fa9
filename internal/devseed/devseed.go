// Package devseed populates the role store with fixture members for local development.
package devseed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/saferide/dispatch-web/internal/domain/model"
	apperrors "github.com/saferide/dispatch-web/internal/errors"
)

// seededBy is recorded as the operator on every assignment this package writes.
const seededBy = "devseed"

// RoleWriter is the subset of the role store the seeder needs.
type RoleWriter interface {
	Get(ctx context.Context, subject string) (*model.RoleAssignment, error)
	Set(ctx context.Context, req model.SetRoleRequest) (*model.RoleAssignment, error)
}

// Options configures a seeding run.
type Options struct {
	Roles RoleWriter
	// DevSubject is the dev-auth identity; it is always (re)assigned DevRole.
	DevSubject string
	DevEmail   string
	DevRole    string
	// Fixtures adds one demo member per role when true.
	Fixtures bool
	Logger   *slog.Logger
}

// Fixture is a demo member seeded when Options.Fixtures is set.
type Fixture struct {
	Subject string
	Email   string
	Role    string
}

// DefaultFixtures returns one demo member per role.
func DefaultFixtures() []Fixture {
	return []Fixture{
		{Subject: "demo-admin", Email: "admin@dispatch.test", Role: "ADMIN"},
		{Subject: "demo-dispatcher", Email: "dispatcher@dispatch.test", Role: "DISPATCHER"},
		{Subject: "demo-driver", Email: "driver@dispatch.test", Role: "DRIVER"},
		{Subject: "demo-member", Email: "member@dispatch.test", Role: "MEMBER"},
	}
}

// Result summarises what a run changed.
type Result struct {
	Assigned int
	Skipped  int
}

// Run seeds the dev identity's role and, optionally, the demo fixtures.
// Existing fixture assignments are left alone so manual edits survive restarts.
func Run(ctx context.Context, opts Options) (Result, error) {
	if opts.Roles == nil {
		return Result{}, errors.New("devseed: role store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var res Result
	if opts.DevSubject != "" {
		a, err := opts.Roles.Set(ctx, model.SetRoleRequest{
			Subject:   opts.DevSubject,
			Role:      opts.DevRole,
			Email:     opts.DevEmail,
			ChangedBy: seededBy,
		})
		if err != nil {
			return res, fmt.Errorf("seed dev role for %s: %w", opts.DevSubject, err)
		}
		res.Assigned++
		logger.InfoContext(ctx, "seeded dev role", "subject", a.Subject, "role", a.Role)
	}

	if !opts.Fixtures {
		return res, nil
	}

	var errs []error
	for _, f := range DefaultFixtures() {
		created, err := seedIfMissing(ctx, opts.Roles, f)
		switch {
		case err != nil:
			logger.WarnContext(ctx, "failed to seed fixture", "subject", f.Subject, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", f.Subject, err))
		case created:
			res.Assigned++
		default:
			res.Skipped++
		}
	}
	if len(errs) > 0 {
		return res, fmt.Errorf("%d seed errors: %w", len(errs), errors.Join(errs...))
	}
	return res, nil
}

func seedIfMissing(ctx context.Context, roles RoleWriter, f Fixture) (bool, error) {
	_, err := roles.Get(ctx, f.Subject)
	if err == nil {
		return false, nil
	}
	if !apperrors.IsNotFound(err) {
		return false, err
	}
	if _, err = roles.Set(ctx, model.SetRoleRequest{
		Subject:   f.Subject,
		Role:      f.Role,
		Email:     f.Email,
		ChangedBy: seededBy,
	}); err != nil {
		return false, err
	}
	return true, nil
}

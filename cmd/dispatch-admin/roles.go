package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/saferide/dispatch-web/internal/data"
	domainauth "github.com/saferide/dispatch-web/internal/domain/auth"
	"github.com/saferide/dispatch-web/internal/domain/model"
	apperrors "github.com/saferide/dispatch-web/internal/errors"
)

const roleCommandTimeout = 30 * time.Second

// roleAdmin is the role store surface the CLI drives.
type roleAdmin interface {
	Get(ctx context.Context, subject string) (*model.RoleAssignment, error)
	List(ctx context.Context, opts model.ListRolesOptions) ([]model.RoleAssignment, error)
	Set(ctx context.Context, req model.SetRoleRequest) (*model.RoleAssignment, error)
	Delete(ctx context.Context, subject, changedBy string) (bool, error)
	History(ctx context.Context, subject string, limit int) ([]model.RoleChange, error)
}

func runRoles(cmdCtx *commandContext, args []string) error {
	return withDatabase(cmdCtx, roleCommandTimeout, func(ctx context.Context, db *sql.DB) error {
		return execRoles(ctx, cmdCtx, data.NewRoleRepo(db), args)
	})
}

func execRoles(ctx context.Context, cmdCtx *commandContext, roles roleAdmin, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: roles get|set|list|delete|history [flags] ...")
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "get":
		return rolesGet(ctx, cmdCtx.Out, roles, rest)
	case "set":
		return rolesSet(ctx, cmdCtx.Out, roles, rest)
	case "list":
		return rolesList(ctx, cmdCtx.Out, roles, rest)
	case "delete":
		return rolesDelete(ctx, cmdCtx, roles, rest)
	case "history":
		return rolesHistory(ctx, cmdCtx.Out, roles, rest)
	default:
		return fmt.Errorf("unknown roles subcommand %q", sub)
	}
}

// defaultOperator names who made a change when --by is not given.
func defaultOperator() string {
	if u := strings.TrimSpace(os.Getenv("USER")); u != "" {
		return u
	}
	return "dispatch-admin"
}

func rolesGet(ctx context.Context, w io.Writer, roles roleAdmin, args []string) error {
	fs := flag.NewFlagSet("roles get", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: roles get [--json] <subject>")
	}

	a, err := roles.Get(ctx, fs.Arg(0))
	if apperrors.IsNotFound(err) {
		return fmt.Errorf("no role assigned to %q", fs.Arg(0))
	}
	if err != nil {
		return err
	}
	if *asJSON {
		return printJSON(w, a)
	}
	return printAssignments(w, []model.RoleAssignment{*a})
}

func rolesSet(ctx context.Context, w io.Writer, roles roleAdmin, args []string) error {
	fs := flag.NewFlagSet("roles set", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	email := fs.String("email", "", "Member email recorded alongside the role")
	by := fs.String("by", defaultOperator(), "Operator recorded in the audit log")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("usage: roles set [--email addr] [--by operator] <subject> <ADMIN|DISPATCHER|DRIVER|MEMBER>")
	}

	a, err := roles.Set(ctx, model.SetRoleRequest{
		Subject:   fs.Arg(0),
		Role:      fs.Arg(1),
		Email:     *email,
		ChangedBy: *by,
	})
	if err != nil {
		return err
	}
	return writef(w, "%s is now %s\n", a.Subject, a.Role)
}

func rolesList(ctx context.Context, w io.Writer, roles roleAdmin, args []string) error {
	fs := flag.NewFlagSet("roles list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	role := fs.String("role", "", "Only list members holding this role")
	limit := fs.Int("limit", 100, "Maximum rows to print")
	offset := fs.Int("offset", 0, "Rows to skip")
	asJSON := fs.Bool("json", false, "Print JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := model.ListRolesOptions{Limit: *limit, Offset: *offset}
	if *role != "" {
		parsed, err := domainauth.ParseRole(*role)
		if err != nil {
			return err
		}
		opts.Role = parsed
	}

	list, err := roles.List(ctx, opts)
	if err != nil {
		return err
	}
	if *asJSON {
		if list == nil {
			list = []model.RoleAssignment{}
		}
		return printJSON(w, list)
	}
	if len(list) == 0 {
		return writeln(w, "(no role assignments)")
	}
	return printAssignments(w, list)
}

func rolesDelete(ctx context.Context, cmdCtx *commandContext, roles roleAdmin, args []string) error {
	fs := flag.NewFlagSet("roles delete", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	by := fs.String("by", defaultOperator(), "Operator recorded in the audit log")
	yes := fs.Bool("yes", false, "Skip confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: roles delete [--by operator] [--yes] <subject>")
	}
	subject := fs.Arg(0)

	if !*yes {
		warning := fmt.Sprintf("About to remove the role of %q. Their next request will be treated as unauthenticated.", subject)
		if err := confirm(cmdCtx, warning); err != nil {
			return err
		}
	}

	deleted, err := roles.Delete(ctx, subject, *by)
	if err != nil {
		return err
	}
	if !deleted {
		return writef(cmdCtx.Out, "%s had no role assigned\n", subject)
	}
	return writef(cmdCtx.Out, "removed role of %s\n", subject)
}

func rolesHistory(ctx context.Context, w io.Writer, roles roleAdmin, args []string) error {
	fs := flag.NewFlagSet("roles history", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	limit := fs.Int("limit", 20, "Maximum entries to print")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: roles history [--limit n] <subject>")
	}

	changes, err := roles.History(ctx, fs.Arg(0), *limit)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		return writeln(w, "(no changes recorded)")
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err = writeln(tw, "CHANGED AT\tFROM\tTO\tBY"); err != nil {
		return err
	}
	for _, c := range changes {
		if err = writef(tw, "%s\t%s\t%s\t%s\n",
			c.ChangedAt.UTC().Format(time.RFC3339), orDash(c.OldRole), orDash(c.NewRole), c.ChangedBy); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func printAssignments(w io.Writer, list []model.RoleAssignment) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writeln(tw, "SUBJECT\tROLE\tEMAIL\tUPDATED AT"); err != nil {
		return err
	}
	for _, a := range list {
		if err := writef(tw, "%s\t%s\t%s\t%s\n",
			a.Subject, a.Role, orDash(a.Email), a.UpdatedAt.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

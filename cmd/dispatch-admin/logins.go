package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	redisadapter "github.com/saferide/dispatch-web/internal/adapters/redis"
	domainauth "github.com/saferide/dispatch-web/internal/domain/auth"
)

// loginAdmin is the login store surface the CLI drives.
type loginAdmin interface {
	ForSubject(ctx context.Context, subject string) ([]domainauth.Login, error)
	RevokeSubject(ctx context.Context, subject string) (int, error)
}

func runLogins(cmdCtx *commandContext, args []string) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, 2*time.Minute)
	defer cancel()

	client, err := connectRedis(cmdCtx.Logger, &cmdCtx.Config)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("redis close failed", "error", closeErr)
		}
	}()

	prefix := cmdCtx.Config.Redis.KeyPrefix
	if prefix == "" {
		prefix = redisadapter.DefaultLoginPrefix
	}
	return execLogins(ctx, cmdCtx, redisadapter.NewLoginStoreWithPrefix(client, prefix), args)
}

func execLogins(ctx context.Context, cmdCtx *commandContext, logins loginAdmin, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: logins list|revoke [flags] <subject>")
	}
	sub, rest := args[0], args[1:]

	fs := flag.NewFlagSet("logins "+sub, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	yes := fs.Bool("yes", false, "Skip confirmation prompt (revoke only)")
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: logins %s <subject>", sub)
	}
	subject := fs.Arg(0)

	switch sub {
	case "list":
		list, err := logins.ForSubject(ctx, subject)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			return writef(cmdCtx.Out, "%s has no active logins\n", subject)
		}
		tw := tabwriter.NewWriter(cmdCtx.Out, 0, 0, 2, ' ', 0)
		if err = writeln(tw, "LOGIN ID\tEMAIL\tEXPIRES AT"); err != nil {
			return err
		}
		for _, l := range list {
			if err = writef(tw, "%s\t%s\t%s\n", l.ID, l.Email, l.ExpiresAt.UTC().Format(time.RFC3339)); err != nil {
				return err
			}
		}
		return tw.Flush()
	case "revoke":
		if !*yes {
			if err := confirm(cmdCtx, fmt.Sprintf("About to sign %q out of every browser session.", subject)); err != nil {
				return err
			}
		}
		n, err := logins.RevokeSubject(ctx, subject)
		if err != nil {
			return err
		}
		return writef(cmdCtx.Out, "revoked %d login(s) for %s\n", n, subject)
	default:
		return fmt.Errorf("unknown logins subcommand %q", sub)
	}
}

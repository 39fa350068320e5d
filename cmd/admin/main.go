package main

// Maintenance commands against the configured submission store:
//   go run ./cmd/admin reprocess [-id ID] [-page N]
//   go run ./cmd/admin assign-owner -id ID -user UID

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"hairalyzer-backend/internal/admin"
	"hairalyzer-backend/internal/bootstrap"
	"hairalyzer-backend/internal/shared/config"
	"hairalyzer-backend/internal/shared/telemetry"
)

const usage = "usage: admin <reprocess|assign-owner> [flags]"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		telemetry.Error("admin.failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	app, err := bootstrap.BuildAdmin(cfg)
	if err != nil {
		return err
	}
	defer app.Close(context.Background())

	return dispatch(ctx, app.AdminService, args, out)
}

func dispatch(ctx context.Context, svc *admin.Service, args []string, out io.Writer) error {
	switch args[0] {
	case "reprocess":
		fs := flag.NewFlagSet("reprocess", flag.ContinueOnError)
		id := fs.String("id", "", "submission id; all submissions when empty")
		page := fs.Int("page", admin.DefaultPageSize, "page size when reprocessing all")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *id != "" {
			return writeOutcome(out, svc.Reprocess(ctx, *id))
		}
		summary, err := svc.ReprocessAll(ctx, *page)
		if encodeErr := writeJSON(out, summary); encodeErr != nil {
			return encodeErr
		}
		return err
	case "assign-owner":
		fs := flag.NewFlagSet("assign-owner", flag.ContinueOnError)
		id := fs.String("id", "", "submission id")
		user := fs.String("user", "", "owner user id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *id == "" || *user == "" {
			return errors.New("assign-owner requires -id and -user")
		}
		return writeOutcome(out, svc.AssignOwner(ctx, *id, *user))
	default:
		return fmt.Errorf("unknown command %q; %s", args[0], usage)
	}
}

func writeOutcome(out io.Writer, o admin.Outcome) error {
	if err := writeJSON(out, o); err != nil {
		return err
	}
	switch o.Status {
	case admin.StatusOK, admin.StatusSkipped:
		return nil
	default:
		return fmt.Errorf("%s: %s %s", o.ID, o.Status, o.Detail)
	}
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

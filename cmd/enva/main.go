// Package main is the entry point for the enva environment tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.pkgs.ch/enva/cmd/enva/commands"
	"go.pkgs.ch/enva/internal/app"
	"go.pkgs.ch/enva/internal/core/domain"
	_ "go.pkgs.ch/enva/internal/wiring"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	components, _, err := graft.ExecuteFor[*app.Components](ctx)
	if err != nil {
		// Logger is not available if initialization failed.
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return 1
	}
	defer func() {
		_ = components.Telemetry.Close()
	}()

	cli := commands.New(components.App, components.Telemetry)

	if err := cli.Execute(ctx); err != nil {
		// The diff report has already been written; the error only
		// carries the exit status.
		if errors.Is(err, domain.ErrManifestsDiffer) {
			return 1
		}
		// zerr prints a report with stack trace and metadata via %+v.
		_, _ = fmt.Fprintf(os.Stderr, "%+v\n", err)
		return 1
	}
	return 0
}

// Package commands implements the CLI commands for the enva tool.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.pkgs.ch/enva/internal/app"
	"go.pkgs.ch/enva/internal/build"
	"go.pkgs.ch/enva/internal/core/ports"
)

// displayTelemetry is satisfied by telemetry implementations that can
// switch to a live progress display.
type displayTelemetry interface {
	EnableDisplay(out io.Writer)
}

// CLI represents the command line interface for enva.
type CLI struct {
	app       *app.App
	telemetry ports.Telemetry
	rootCmd   *cobra.Command
}

// New creates a new CLI instance with the given app and telemetry.
func New(a *app.App, tel ports.Telemetry) *CLI {
	rootCmd := &cobra.Command{
		Use:           "enva",
		Short:         "A conda environment manifest toolkit",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringP("file", "f", "", "Path to the environment manifest (default environment.yml)")
	rootCmd.PersistentFlags().Bool("progress", false, "Render resolution progress to stderr")

	c := &CLI{
		app:       a,
		telemetry: tel,
		rootCmd:   rootCmd,
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if file, _ := cmd.Flags().GetString("file"); file != "" {
			a.SetManifestFile(file)
		}
		if progress, _ := cmd.Flags().GetBool("progress"); progress {
			// Telemetry without a display stays on the no-op recorder.
			if d, ok := c.telemetry.(displayTelemetry); ok {
				d.EnableDisplay(cmd.ErrOrStderr())
			}
		}
	}

	rootCmd.AddCommand(c.newLockCmd())
	rootCmd.AddCommand(c.newCheckCmd())
	rootCmd.AddCommand(c.newExportCmd())
	rootCmd.AddCommand(c.newDiffCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetErr sets the error output stream for the root command. Used for
// testing.
func (c *CLI) SetErr(w io.Writer) {
	c.rootCmd.SetErr(w)
}

// Package cli provides the command-line interface for optics-runner.
package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{"OPTICS_VERBOSE"},
	},
	&cli.BoolFlag{
		Name:  "no-console",
		Usage: "Disable console log output",
	},
}

// Execute runs the CLI.
func Execute() {
	app := &cli.App{
		Name:    "optics",
		Usage:   "Declarative mobile/UI test runner with pluggable capability providers",
		Version: Version,
		Description: `Optics runs declaratively defined test suites against devices through
swappable drivers, element sources, and OCR/vision backends.

Examples:
  optics init my_project
  optics execute my_project
  optics dry_run my_project --test-cases "Test Login"`,
		Flags: GlobalFlags,
		Commands: []*cli.Command{
			initCommand,
			listCommand,
			setupCommand,
			executeCommand,
			dryRunCommand,
			versionCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var versionCommand = &cli.Command{
	Name:  "version",
	Usage: "Print the runner version",
	Action: func(c *cli.Context) error {
		fmt.Fprintf(c.App.Writer, "optics-runner %s\n", Version)
		return nil
	},
}

// Package cli provides the command-line interface for microej-driver.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to config.yaml (default: ./config.yaml if present)",
		EnvVars: []string{"MICROEJ_CONFIG"},
	},
	&cli.StringFlag{
		Name:  "proxy-url",
		Usage: "MicroEJ proxy base URL (overrides config and MICROEJ_PROXY_URL)",
	},
	&cli.StringFlag{
		Name:    "driver",
		Aliases: []string{"d"},
		Usage:   "Driver to use (microej, mock)",
		Value:   "microej",
		EnvVars: []string{"MICROEJ_DRIVER"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{"MICROEJ_VERBOSE"},
	},
	&cli.StringFlag{
		Name:  "log-file",
		Usage: "Log file path (overrides config)",
	},
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "microej-driver",
		Usage:   "WebDriver adapter for MicroEJ devices and simulators",
		Version: Version,
		Description: `microej-driver forwards W3C WebDriver commands to the MicroEJ proxy
(default http://localhost:4724/) that controls a device or simulator.

Examples:
  microej-driver serve --listen 127.0.0.1:4723
  microej-driver mcp --transport stdio
  microej-driver run smoke.js
  microej-driver find okButton`,
		Flags: GlobalFlags,
		Commands: []*cli.Command{
			serveCommand,
			mcpCommand,
			runCommand,
			findCommand,
			clickCommand,
			textCommand,
			screenshotCommand,
			sourceCommand,
			windowRectCommand,
			performActionsCommand,
		},
		After: func(c *cli.Context) error {
			closeEnv(c)
			return nil
		},
	}
}

// Execute runs the CLI.
func Execute() {
	// .env must be in the environment before flags read their EnvVars.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: .env: %v\n", err)
	}

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

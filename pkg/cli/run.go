package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/devicelab-dev/microej-driver/pkg/jsengine"
	"github.com/devicelab-dev/microej-driver/pkg/logger"
	"github.com/urfave/cli/v2"
)

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "Execute a JavaScript automation script",
	ArgsUsage: "<script.js>",
	Description: `Run a script with a global driver object bound to the MicroEJ proxy.
Values assigned to output are printed as JSON when the script finishes.

Example script:
  var ok = driver.findElement("okButton");
  driver.click(ok);
  output.label = driver.getText(driver.findElement("status"));

Examples:
  microej-driver run smoke.js
  microej-driver run smoke.js -e USER=demo`,
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "env",
			Aliases: []string{"e"},
			Usage:   "Script variable KEY=VALUE (repeatable)",
		},
	},
	Action: runScript,
}

func runScript(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one script file is required")
	}
	path := c.Args().First()

	script, err := os.ReadFile(path) //#nosec G304 -- user-provided script
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	e, err := setupEnv(c)
	if err != nil {
		return err
	}

	engine := jsengine.New(e.driver, jsengine.WithStdout(c.App.Writer))
	for k, v := range parseEnvVars(c.StringSlice("env")) {
		engine.SetVariable(k, v)
	}

	ctx, stop := signalContext(c.Context)
	defer stop()

	logger.Info("Running script %s", path)
	if err := engine.Run(ctx, path, string(script)); err != nil {
		logger.Error("Script %s failed: %v", path, err)
		return err
	}

	if out := engine.GetOutput(); len(out) > 0 {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("encode output: %w", err)
		}
		fmt.Fprintln(c.App.Writer, string(data))
	}
	return nil
}

// parseEnvVars parses KEY=VALUE pairs; entries without "=" are ignored.
func parseEnvVars(envs []string) map[string]string {
	result := make(map[string]string)
	for _, e := range envs {
		if key, value, ok := strings.Cut(e, "="); ok {
			result[key] = value
		}
	}
	return result
}

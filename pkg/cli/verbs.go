package cli

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/devicelab-dev/microej-driver/pkg/core"
	"github.com/urfave/cli/v2"
)

// One-shot debug verbs. Each prints the driver result as {"value": ...}.

var findCommand = &cli.Command{
	Name:      "find",
	Usage:     "Find elements by id",
	ArgsUsage: "<selector>",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "all",
			Usage: "Print every match instead of the first",
		},
	},
	Action: func(c *cli.Context) error {
		selector, err := singleArg(c, "selector")
		if err != nil {
			return err
		}
		return withDriver(c, func(d core.Driver) (interface{}, error) {
			if c.Bool("all") {
				return d.FindElements(c.Context, "id", selector)
			}
			return d.FindElement(c.Context, "id", selector)
		})
	},
}

var clickCommand = &cli.Command{
	Name:      "click",
	Usage:     "Click an element",
	ArgsUsage: "<element>",
	Action: func(c *cli.Context) error {
		ref, err := singleArg(c, "element")
		if err != nil {
			return err
		}
		return withDriver(c, func(d core.Driver) (interface{}, error) {
			return nil, d.Click(c.Context, ref)
		})
	},
}

var textCommand = &cli.Command{
	Name:      "text",
	Usage:     "Print an element's text",
	ArgsUsage: "<element>",
	Action: func(c *cli.Context) error {
		ref, err := singleArg(c, "element")
		if err != nil {
			return err
		}
		return withDriver(c, func(d core.Driver) (interface{}, error) {
			return d.GetText(c.Context, ref)
		})
	},
}

var screenshotCommand = &cli.Command{
	Name:  "screenshot",
	Usage: "Capture the screen",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the decoded PNG to this file instead of printing base64",
		},
	},
	Action: runScreenshot,
}

var sourceCommand = &cli.Command{
	Name:  "source",
	Usage: "Print the widget hierarchy",
	Action: func(c *cli.Context) error {
		return withDriver(c, func(d core.Driver) (interface{}, error) {
			return d.GetPageSource(c.Context)
		})
	},
}

var windowRectCommand = &cli.Command{
	Name:  "window-rect",
	Usage: "Print the window rectangle",
	Action: func(c *cli.Context) error {
		return withDriver(c, func(d core.Driver) (interface{}, error) {
			return d.GetWindowRect(c.Context)
		})
	},
}

var performActionsCommand = &cli.Command{
	Name:      "perform-actions",
	Usage:     "Send a W3C action sequence read from a JSON file",
	ArgsUsage: "<actions.json>",
	Action: func(c *cli.Context) error {
		path, err := singleArg(c, "actions file")
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path) //#nosec G304 -- user-provided actions file
		if err != nil {
			return fmt.Errorf("read actions: %w", err)
		}
		if !json.Valid(data) {
			return fmt.Errorf("%s: invalid JSON", path)
		}
		return withDriver(c, func(d core.Driver) (interface{}, error) {
			return nil, d.PerformActions(c.Context, json.RawMessage(data))
		})
	},
}

func runScreenshot(c *cli.Context) error {
	output := c.String("output")
	if output == "" {
		return withDriver(c, func(d core.Driver) (interface{}, error) {
			return d.Screenshot(c.Context)
		})
	}

	e, err := setupEnv(c)
	if err != nil {
		return err
	}
	raw, err := e.driver.Screenshot(c.Context)
	if err != nil {
		return err
	}

	var b64 string
	if err := json.Unmarshal(raw, &b64); err != nil {
		return fmt.Errorf("screenshot is not a base64 string: %w", err)
	}
	png, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return fmt.Errorf("decode screenshot: %w", err)
	}
	if err := os.WriteFile(output, png, 0o644); err != nil {
		return fmt.Errorf("write screenshot: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Saved %s (%d bytes)\n", output, len(png))
	return nil
}

func singleArg(c *cli.Context, what string) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("exactly one %s is required", what)
	}
	return c.Args().First(), nil
}

// withDriver sets up the environment, runs fn and prints its result.
func withDriver(c *cli.Context, fn func(core.Driver) (interface{}, error)) error {
	e, err := setupEnv(c)
	if err != nil {
		return err
	}
	value, err := fn(e.driver)
	if err != nil {
		return err
	}
	return printValue(c, value)
}

func printValue(c *cli.Context, value interface{}) error {
	data, err := json.MarshalIndent(map[string]interface{}{"value": value}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Fprintln(c.App.Writer, string(data))
	return nil
}

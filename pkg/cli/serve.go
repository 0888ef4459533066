package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/devicelab-dev/microej-driver/pkg/logger"
	"github.com/devicelab-dev/microej-driver/pkg/mcpserver"
	"github.com/devicelab-dev/microej-driver/pkg/server"
	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Run the W3C WebDriver server",
	Description: `Accept WebDriver sessions and forward every command to the MicroEJ proxy.

Examples:
  microej-driver serve
  microej-driver --proxy-url http://192.168.1.20:4724/ serve --listen :4723`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "listen",
			Aliases: []string{"l"},
			Usage:   "Address to listen on (overrides config and MICROEJ_LISTEN)",
		},
	},
	Action: runServe,
}

var mcpCommand = &cli.Command{
	Name:  "mcp",
	Usage: "Run an MCP server exposing driver tools",
	Description: `Expose find/click/text/screenshot and the other driver verbs as MCP tools.

Examples:
  microej-driver mcp
  microej-driver mcp --transport streamable-http --port 8080`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "transport",
			Usage: "MCP transport (stdio, streamable-http)",
			Value: "stdio",
		},
		&cli.IntFlag{
			Name:  "port",
			Usage: "Port for streamable-http transport",
			Value: 8080,
		},
	},
	Action: runMCP,
}

func runServe(c *cli.Context) error {
	e, err := setupEnv(c)
	if err != nil {
		return err
	}

	addr := e.cfg.Listen
	if l := c.String("listen"); l != "" {
		addr = l
	}

	if !c.Bool("verbose") {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signalContext(c.Context)
	defer stop()

	fmt.Fprintf(c.App.Writer, "microej-driver %s listening on %s (proxy %s)\n", Version, addr, e.cfg.ProxyBaseURL)

	if err := server.New(e.driver).Run(ctx, addr); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func runMCP(c *cli.Context) error {
	e, err := setupEnv(c)
	if err != nil {
		return err
	}

	cfg := mcpserver.Config{
		Transport: c.String("transport"),
		Port:      c.Int("port"),
		Version:   Version,
	}
	logger.Info("Serving MCP over %s", cfg.Transport)

	return mcpserver.New(e.driver, cfg.Version).Serve(cfg)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

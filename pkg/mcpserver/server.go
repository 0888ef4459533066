// Package mcpserver exposes driver verbs as Model Context Protocol tools.
package mcpserver

import (
	"fmt"

	"github.com/devicelab-dev/microej-driver/pkg/core"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Config holds MCP server configuration.
type Config struct {
	Transport string // stdio or streamable-http
	Port      int
	Version   string
}

// Server wraps the MCP server with the driver it forwards to.
type Server struct {
	driver core.Driver
	mcp    *mcpserver.MCPServer
}

// New creates and configures an MCP server with all driver tools.
func New(driver core.Driver, version string) *Server {
	s := &Server{driver: driver}
	s.mcp = mcpserver.NewMCPServer("microej-driver", version)
	s.registerTools()
	return s
}

// Serve starts the MCP server with the configured transport.
func (s *Server) Serve(cfg Config) error {
	switch cfg.Transport {
	case "", "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *Server) registerTools() {
	element := mcp.WithString("element", mcp.Required(), mcp.Description("Element reference returned by find_element"))

	s.mcp.AddTool(
		mcp.NewTool("find_element",
			mcp.WithDescription("Find UI elements by id. Returns element references in proxy order."),
			mcp.WithString("selector", mcp.Required(), mcp.Description("Widget id to look up")),
			mcp.WithBoolean("all", mcp.Description("Return every match instead of the first")),
		),
		s.handleFindElement,
	)

	s.mcp.AddTool(
		mcp.NewTool("click",
			mcp.WithDescription("Click an element"),
			element,
		),
		s.handleClick,
	)

	s.mcp.AddTool(
		mcp.NewTool("get_text",
			mcp.WithDescription("Read an element's text"),
			element,
		),
		s.handleGetText,
	)

	s.mcp.AddTool(
		mcp.NewTool("get_attribute",
			mcp.WithDescription("Read an element attribute"),
			element,
			mcp.WithString("name", mcp.Required(), mcp.Description("Attribute name")),
		),
		s.handleGetAttribute,
	)

	s.mcp.AddTool(
		mcp.NewTool("get_css",
			mcp.WithDescription("Read an element CSS property"),
			element,
			mcp.WithString("name", mcp.Required(), mcp.Description("Property name")),
		),
		s.handleGetCSS,
	)

	s.mcp.AddTool(
		mcp.NewTool("element_rect",
			mcp.WithDescription("Get an element's position and size"),
			element,
		),
		s.handleElementRect,
	)

	s.mcp.AddTool(
		mcp.NewTool("is_displayed",
			mcp.WithDescription("Check whether an element is displayed"),
			element,
		),
		s.handleIsDisplayed,
	)

	s.mcp.AddTool(
		mcp.NewTool("is_enabled",
			mcp.WithDescription("Check whether an element is enabled"),
			element,
		),
		s.handleIsEnabled,
	)

	s.mcp.AddTool(
		mcp.NewTool("screenshot",
			mcp.WithDescription("Capture the device screen as PNG"),
		),
		s.handleScreenshot,
	)

	s.mcp.AddTool(
		mcp.NewTool("page_source",
			mcp.WithDescription("Dump the widget hierarchy"),
		),
		s.handlePageSource,
	)

	s.mcp.AddTool(
		mcp.NewTool("window_rect",
			mcp.WithDescription("Get the device window size"),
		),
		s.handleWindowRect,
	)

	s.mcp.AddTool(
		mcp.NewTool("perform_actions",
			mcp.WithDescription("Run a W3C action sequence (JSON array of input sources)"),
			mcp.WithString("actions", mcp.Required(), mcp.Description("W3C actions JSON")),
		),
		s.handlePerformActions,
	)
}

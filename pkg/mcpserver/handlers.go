package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"gopkg.in/yaml.v3"
)

// toolResult is serialized to YAML for every text response.
type toolResult struct {
	OK       bool        `yaml:"ok"`
	Action   string      `yaml:"action"`
	Element  string      `yaml:"element,omitempty"`
	Elements []string    `yaml:"elements,omitempty"`
	Value    interface{} `yaml:"value,omitempty"`
}

func resultToText(result toolResult) string {
	b, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Sprintf("ok: %v\naction: %s", result.OK, result.Action)
	}
	return string(b)
}

func textResult(result toolResult) *mcp.CallToolResult {
	result.OK = true
	return mcp.NewToolResultText(resultToText(result))
}

// rawValue decodes a raw proxy payload so it renders naturally in YAML.
func rawValue(raw json.RawMessage) interface{} {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}

func stringParam(params map[string]interface{}, key, defaultVal string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", v)
	}
	return defaultVal
}

func boolParam(params map[string]interface{}, key string, defaultVal bool) bool {
	if v, ok := params[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}

func (s *Server) handleFindElement(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	selector := stringParam(params, "selector", "")
	if selector == "" {
		return mcp.NewToolResultError("selector is required"), nil
	}

	if boolParam(params, "all", false) {
		handles, err := s.driver.FindElements(ctx, "id", selector)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		ids := make([]string, len(handles))
		for i, h := range handles {
			ids[i] = h.ID
		}
		return textResult(toolResult{Action: "find_element", Elements: ids}), nil
	}

	handle, err := s.driver.FindElement(ctx, "id", selector)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return textResult(toolResult{Action: "find_element", Element: handle.ID}), nil
}

func (s *Server) handleClick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := stringParam(request.GetArguments(), "element", "")
	if err := s.driver.Click(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return textResult(toolResult{Action: "click", Element: id}), nil
}

func (s *Server) handleGetText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := stringParam(request.GetArguments(), "element", "")
	text, err := s.driver.GetText(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return textResult(toolResult{Action: "get_text", Element: id, Value: text}), nil
}

func (s *Server) handleGetAttribute(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	id := stringParam(params, "element", "")
	raw, err := s.driver.GetAttribute(ctx, stringParam(params, "name", ""), id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return textResult(toolResult{Action: "get_attribute", Element: id, Value: rawValue(raw)}), nil
}

func (s *Server) handleGetCSS(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	id := stringParam(params, "element", "")
	raw, err := s.driver.GetCSSProperty(ctx, stringParam(params, "name", ""), id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return textResult(toolResult{Action: "get_css", Element: id, Value: rawValue(raw)}), nil
}

func (s *Server) handleElementRect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := stringParam(request.GetArguments(), "element", "")
	raw, err := s.driver.GetElementRect(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return textResult(toolResult{Action: "element_rect", Element: id, Value: rawValue(raw)}), nil
}

func (s *Server) handleIsDisplayed(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := stringParam(request.GetArguments(), "element", "")
	displayed, err := s.driver.ElementDisplayed(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return textResult(toolResult{Action: "is_displayed", Element: id, Value: displayed}), nil
}

func (s *Server) handleIsEnabled(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := stringParam(request.GetArguments(), "element", "")
	enabled, err := s.driver.ElementEnabled(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return textResult(toolResult{Action: "is_enabled", Element: id, Value: enabled}), nil
}

// handleScreenshot returns the proxy's base64 PNG as image content. Payloads
// that are not a base64 string fall back to text.
func (s *Server) handleScreenshot(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := s.driver.Screenshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b64 string
	if err := json.Unmarshal(raw, &b64); err != nil {
		return textResult(toolResult{Action: "screenshot", Value: rawValue(raw)}), nil
	}
	if _, err := base64.StdEncoding.DecodeString(b64); err != nil {
		return textResult(toolResult{Action: "screenshot", Value: b64}), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.ImageContent{
				Type:     "image",
				Data:     b64,
				MIMEType: "image/png",
			},
		},
	}, nil
}

func (s *Server) handlePageSource(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := s.driver.GetPageSource(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return textResult(toolResult{Action: "page_source", Value: rawValue(raw)}), nil
}

func (s *Server) handleWindowRect(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := s.driver.GetWindowRect(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return textResult(toolResult{Action: "window_rect", Value: rawValue(raw)}), nil
}

func (s *Server) handlePerformActions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	actions := stringParam(request.GetArguments(), "actions", "")
	if !json.Valid([]byte(actions)) {
		return mcp.NewToolResultError("actions must be valid JSON"), nil
	}
	if err := s.driver.PerformActions(ctx, json.RawMessage(actions)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return textResult(toolResult{Action: "perform_actions"}), nil
}

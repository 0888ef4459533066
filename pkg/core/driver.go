package core

import (
	"context"
	"encoding/json"
	"fmt"
)

// W3CElementKey is the W3C WebDriver web element identifier.
const W3CElementKey = "element-6066-11e4-a52e-4f735466cecf"

// Driver defines the automation verbs a host can issue against a device.
// Implementations: MicroEJ proxy, mock.
// Each call is independent; implementations keep no per-call state.
type Driver interface {
	// Element lookup
	FindElement(ctx context.Context, strategy, selector string) (ElementHandle, error)
	FindElements(ctx context.Context, strategy, selector string) ([]ElementHandle, error)

	// Element interaction and queries
	Click(ctx context.Context, elementID string) error
	GetText(ctx context.Context, elementID string) (string, error)
	ElementDisplayed(ctx context.Context, elementID string) (bool, error)
	ElementEnabled(ctx context.Context, elementID string) (bool, error)
	GetAttribute(ctx context.Context, name, elementID string) (json.RawMessage, error)
	GetElementRect(ctx context.Context, elementID string) (json.RawMessage, error)
	GetCSSProperty(ctx context.Context, name, elementID string) (json.RawMessage, error)

	// Screen
	Screenshot(ctx context.Context) (json.RawMessage, error)
	GetWindowRect(ctx context.Context) (json.RawMessage, error)
	GetPageSource(ctx context.Context) (json.RawMessage, error)

	// Input
	PerformActions(ctx context.Context, actions json.RawMessage) error

	// Cookies
	DeleteCookies(ctx context.Context) error
	DeleteCookie(ctx context.Context, name string) error

	// LocatorStrategies lists the strategies FindElement(s) accepts.
	LocatorStrategies() []string
}

// ElementHandle wraps an element reference for return to the host.
// It serializes as a W3C web element: {"element-6066-...": "<id>"}.
type ElementHandle struct {
	ID string
}

// MarshalJSON implements json.Marshaler.
func (h ElementHandle) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{W3CElementKey: h.ID})
}

// UnmarshalJSON implements json.Unmarshaler.
// Accepts the W3C key and the legacy "ELEMENT" key.
func (h *ElementHandle) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if id, ok := m[W3CElementKey]; ok {
		h.ID = id
		return nil
	}
	if id, ok := m["ELEMENT"]; ok {
		h.ID = id
		return nil
	}
	return fmt.Errorf("no element identifier in %s", string(data))
}

// SupportsStrategy reports whether strategy is one of the driver's locator strategies.
func SupportsStrategy(d Driver, strategy string) bool {
	for _, s := range d.LocatorStrategies() {
		if s == strategy {
			return true
		}
	}
	return false
}

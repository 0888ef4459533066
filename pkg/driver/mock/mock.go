// Package mock provides an in-memory driver for testing without a proxy or device.
package mock

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/devicelab-dev/microej-driver/pkg/core"
)

// Element is a fake UI element served by the mock driver.
type Element struct {
	ID         string
	Text       string
	Number     *float64 // when set, GetText reports a numeric value
	Displayed  bool
	Enabled    bool
	Attributes map[string]string
	CSS        map[string]string
	Rect       Rect
}

// Rect is an element or window rectangle.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Driver is a mock implementation of core.Driver for testing.
type Driver struct {
	// Configuration
	Config Config

	mu      sync.Mutex
	calls   []string
	actions []json.RawMessage
}

var _ core.Driver = (*Driver)(nil)

// Config configures mock driver behavior.
type Config struct {
	// Elements maps selector to the elements it resolves to, in order.
	Elements map[string][]Element
	// Errors makes the named verb (e.g. "click", "getText") fail.
	Errors map[string]error
	// StepDelay adds artificial delay per call
	StepDelay time.Duration
	// Window is reported by GetWindowRect
	Window Rect
}

// New creates a new mock driver. With no elements configured it serves a
// single "mock-element" under the selector "mock".
func New(cfg Config) *Driver {
	if cfg.Elements == nil {
		cfg.Elements = map[string][]Element{
			"mock": {{
				ID:        "mock-element",
				Text:      "Mock Element",
				Displayed: true,
				Enabled:   true,
				Rect:      Rect{X: 100, Y: 200, Width: 200, Height: 50},
			}},
		}
	}
	if cfg.Window == (Rect{}) {
		cfg.Window = Rect{Width: 480, Height: 272}
	}
	return &Driver{Config: cfg}
}

// Calls returns the verbs invoked so far, in order.
func (d *Driver) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// Actions returns every action sequence passed to PerformActions.
func (d *Driver) Actions() []json.RawMessage {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]json.RawMessage(nil), d.actions...)
}

func (d *Driver) record(verb string) error {
	d.mu.Lock()
	d.calls = append(d.calls, verb)
	d.mu.Unlock()

	if d.Config.StepDelay > 0 {
		time.Sleep(d.Config.StepDelay)
	}
	if err, ok := d.Config.Errors[verb]; ok {
		return err
	}
	return nil
}

func (d *Driver) element(id string) (Element, error) {
	for _, elems := range d.Config.Elements {
		for _, e := range elems {
			if e.ID == id {
				return e, nil
			}
		}
	}
	return Element{}, core.ErrProxyRequest.WithMessage("Not Found")
}

// LocatorStrategies implements core.Driver.
func (d *Driver) LocatorStrategies() []string {
	return []string{"id"}
}

// FindElements implements core.Driver.
func (d *Driver) FindElements(ctx context.Context, strategy, selector string) ([]core.ElementHandle, error) {
	if err := d.record("findElements"); err != nil {
		return nil, err
	}
	elems := d.Config.Elements[selector]
	handles := make([]core.ElementHandle, len(elems))
	for i, e := range elems {
		handles[i] = core.ElementHandle{ID: e.ID}
	}
	return handles, nil
}

// FindElement implements core.Driver.
func (d *Driver) FindElement(ctx context.Context, strategy, selector string) (core.ElementHandle, error) {
	if err := d.record("findElement"); err != nil {
		return core.ElementHandle{}, err
	}
	elems := d.Config.Elements[selector]
	if len(elems) == 0 {
		return core.ElementHandle{}, core.ErrNoSuchElement
	}
	return core.ElementHandle{ID: elems[0].ID}, nil
}

// Click implements core.Driver.
func (d *Driver) Click(ctx context.Context, elementID string) error {
	if err := d.record("click"); err != nil {
		return err
	}
	_, err := d.element(elementID)
	return err
}

// GetText implements core.Driver.
func (d *Driver) GetText(ctx context.Context, elementID string) (string, error) {
	if err := d.record("getText"); err != nil {
		return "", err
	}
	e, err := d.element(elementID)
	if err != nil {
		return "", err
	}
	if e.Number != nil {
		return fmt.Sprintf(" %v", *e.Number), nil
	}
	return e.Text, nil
}

// ElementDisplayed implements core.Driver.
func (d *Driver) ElementDisplayed(ctx context.Context, elementID string) (bool, error) {
	if err := d.record("isDisplayed"); err != nil {
		return false, err
	}
	e, err := d.element(elementID)
	return e.Displayed, err
}

// ElementEnabled implements core.Driver.
func (d *Driver) ElementEnabled(ctx context.Context, elementID string) (bool, error) {
	if err := d.record("isEnabled"); err != nil {
		return false, err
	}
	e, err := d.element(elementID)
	return e.Enabled, err
}

// GetAttribute implements core.Driver. Unknown attributes report null.
func (d *Driver) GetAttribute(ctx context.Context, name, elementID string) (json.RawMessage, error) {
	if err := d.record("getAttribute"); err != nil {
		return nil, err
	}
	e, err := d.element(elementID)
	if err != nil {
		return nil, err
	}
	if v, ok := e.Attributes[name]; ok {
		return json.Marshal(v)
	}
	return json.RawMessage("null"), nil
}

// GetElementRect implements core.Driver.
func (d *Driver) GetElementRect(ctx context.Context, elementID string) (json.RawMessage, error) {
	if err := d.record("getRect"); err != nil {
		return nil, err
	}
	e, err := d.element(elementID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(e.Rect)
}

// GetCSSProperty implements core.Driver.
func (d *Driver) GetCSSProperty(ctx context.Context, name, elementID string) (json.RawMessage, error) {
	if err := d.record("getCss"); err != nil {
		return nil, err
	}
	e, err := d.element(elementID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(e.CSS[name])
}

// Screenshot returns a mock PNG image, base64 encoded as the proxy does.
func (d *Driver) Screenshot(ctx context.Context) (json.RawMessage, error) {
	if err := d.record("screenshot"); err != nil {
		return nil, err
	}
	// Minimal valid PNG (1x1 transparent pixel)
	png := []byte{
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, // PNG signature
		0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52, // IHDR chunk
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4,
		0x89, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41,
		0x54, 0x78, 0x9C, 0x63, 0x00, 0x01, 0x00, 0x00,
		0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00,
		0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE,
		0x42, 0x60, 0x82,
	}
	return json.Marshal(base64.StdEncoding.EncodeToString(png))
}

// GetWindowRect implements core.Driver.
func (d *Driver) GetWindowRect(ctx context.Context) (json.RawMessage, error) {
	if err := d.record("getWindowRect"); err != nil {
		return nil, err
	}
	return json.Marshal(d.Config.Window)
}

// GetPageSource returns a mock widget hierarchy.
func (d *Driver) GetPageSource(ctx context.Context) (json.RawMessage, error) {
	if err := d.record("getPageSource"); err != nil {
		return nil, err
	}
	return json.Marshal(`<Desktop><Widget id="mock-element" text="Mock Element"/></Desktop>`)
}

// PerformActions implements core.Driver.
func (d *Driver) PerformActions(ctx context.Context, actions json.RawMessage) error {
	if err := d.record("performActions"); err != nil {
		return err
	}
	d.mu.Lock()
	d.actions = append(d.actions, append(json.RawMessage(nil), actions...))
	d.mu.Unlock()
	return nil
}

// DeleteCookies implements core.Driver. No-op.
func (d *Driver) DeleteCookies(ctx context.Context) error {
	return d.record("deleteCookies")
}

// DeleteCookie implements core.Driver. No-op.
func (d *Driver) DeleteCookie(ctx context.Context, name string) error {
	return d.record("deleteCookie")
}

package microej

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/devicelab-dev/microej-driver/pkg/core"
)

// StrategyID is the only locator strategy the proxy understands.
const StrategyID = "id"

// Driver implements core.Driver on top of the MicroEJ proxy.
// Every method issues exactly one HTTP request (cookie methods issue none).
type Driver struct {
	client *Client
}

var _ core.Driver = (*Driver)(nil)

// NewDriver creates a driver talking to the proxy at proxyURL.
func NewDriver(proxyURL string, timeout time.Duration) *Driver {
	return &Driver{client: NewClient(proxyURL, timeout)}
}

// ProxyURL returns the proxy base URL in use.
func (d *Driver) ProxyURL() string {
	return d.client.BaseURL()
}

// LocatorStrategies implements core.Driver.
func (d *Driver) LocatorStrategies() []string {
	return []string{StrategyID}
}

// Element Lookup

// FindElements implements core.Driver. The strategy is not checked here;
// hosts reject anything other than "id" before calling.
func (d *Driver) FindElements(ctx context.Context, strategy, selector string) ([]core.ElementHandle, error) {
	ids, err := d.findIDs(ctx, selector)
	if err != nil {
		return nil, err
	}
	handles := make([]core.ElementHandle, len(ids))
	for i, id := range ids {
		handles[i] = core.ElementHandle{ID: id}
	}
	return handles, nil
}

// FindElement implements core.Driver. Returns the first match in proxy order.
func (d *Driver) FindElement(ctx context.Context, strategy, selector string) (core.ElementHandle, error) {
	ids, err := d.findIDs(ctx, selector)
	if err != nil {
		return core.ElementHandle{}, err
	}
	if len(ids) == 0 {
		return core.ElementHandle{}, core.ErrNoSuchElement.WithDetails(map[string]interface{}{
			"strategy": strategy,
			"selector": selector,
		})
	}
	return core.ElementHandle{ID: ids[0]}, nil
}

func (d *Driver) findIDs(ctx context.Context, selector string) ([]string, error) {
	raw, err := d.client.Get(ctx, "findElementById/"+selector)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("parse findElementById response: %w", err)
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = scalarString(item)
	}
	return ids, nil
}

// Element Operations

// Click implements core.Driver.
func (d *Driver) Click(ctx context.Context, elementID string) error {
	_, err := d.client.Get(ctx, "click/"+elementID)
	return err
}

// GetText implements core.Driver.
// Numeric values are returned with a leading space: 42 becomes " 42".
func (d *Driver) GetText(ctx context.Context, elementID string) (string, error) {
	raw, err := d.client.Get(ctx, "getText/"+elementID)
	if err != nil {
		return "", err
	}
	if isJSONNumber(raw) {
		return " " + formatNumber(raw), nil
	}
	if string(raw) == "null" {
		return "", nil
	}
	return scalarString(raw), nil
}

// ElementDisplayed implements core.Driver.
func (d *Driver) ElementDisplayed(ctx context.Context, elementID string) (bool, error) {
	return d.getBool(ctx, "isDisplayed/"+elementID)
}

// ElementEnabled implements core.Driver.
func (d *Driver) ElementEnabled(ctx context.Context, elementID string) (bool, error) {
	return d.getBool(ctx, "isEnabled/"+elementID)
}

// GetAttribute implements core.Driver.
func (d *Driver) GetAttribute(ctx context.Context, name, elementID string) (json.RawMessage, error) {
	return d.client.Get(ctx, "getAttribute/"+elementID+"/attribute/"+name)
}

// GetElementRect implements core.Driver.
func (d *Driver) GetElementRect(ctx context.Context, elementID string) (json.RawMessage, error) {
	return d.client.Get(ctx, "getRect/"+elementID)
}

// GetCSSProperty implements core.Driver.
func (d *Driver) GetCSSProperty(ctx context.Context, name, elementID string) (json.RawMessage, error) {
	return d.client.Get(ctx, "getCss/"+elementID+"/css/"+name)
}

// Screen Operations

// Screenshot implements core.Driver.
func (d *Driver) Screenshot(ctx context.Context) (json.RawMessage, error) {
	return d.client.Get(ctx, "screenshot")
}

// GetWindowRect implements core.Driver.
func (d *Driver) GetWindowRect(ctx context.Context) (json.RawMessage, error) {
	return d.client.Get(ctx, "getWindowRect")
}

// GetPageSource implements core.Driver.
func (d *Driver) GetPageSource(ctx context.Context) (json.RawMessage, error) {
	return d.client.Get(ctx, "getPageSource")
}

// Input

// PerformActions implements core.Driver. The action sequence is posted as received.
func (d *Driver) PerformActions(ctx context.Context, actions json.RawMessage) error {
	_, err := d.client.Post(ctx, "performActions", actions)
	return err
}

// Cookies

// DeleteCookies implements core.Driver. The proxy has no cookie support;
// this is a no-op.
func (d *Driver) DeleteCookies(ctx context.Context) error {
	return nil
}

// DeleteCookie implements core.Driver. No-op, see DeleteCookies.
func (d *Driver) DeleteCookie(ctx context.Context, name string) error {
	return nil
}

// Helpers

func (d *Driver) getBool(ctx context.Context, path string) (bool, error) {
	raw, err := d.client.Get(ctx, path)
	if err != nil {
		return false, err
	}
	var value bool
	if err := json.Unmarshal(raw, &value); err == nil {
		return value, nil
	}
	// Some proxy builds quote booleans.
	switch scalarString(raw) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("parse %s response: unexpected value %s", path, raw)
}

// scalarString returns the string value of a JSON string, a number in
// JavaScript's canonical form, or the literal text of any other JSON value.
func scalarString(raw json.RawMessage) string {
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	if isJSONNumber(raw) {
		return formatNumber(raw)
	}
	return string(raw)
}

// formatNumber renders a JSON number the way JavaScript's String(n) does:
// 3.0 is "3", 1e3 is "1000", 1e21 is "1e+21", 1.5e-7 is "1.5e-7".
func formatNumber(raw json.RawMessage) string {
	f, err := strconv.ParseFloat(string(raw), 64)
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case err != nil:
		return string(raw)
	case f == 0:
		return "0"
	}

	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	// Go pads the exponent to two digits and JavaScript does not.
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	return mantissa + "e" + sign + digits
}

func isJSONNumber(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	c := raw[0]
	return c == '-' || (c >= '0' && c <= '9')
}

package core

// ErrorCategory classifies the type of error for better debugging and reporting
type ErrorCategory int

const (
	ErrCategoryNone       ErrorCategory = iota // No error
	ErrCategoryAssertion                       // Element lookup came back empty
	ErrCategoryConnection                      // Proxy unreachable
	ErrCategoryProxy                           // Proxy answered with a non-success status
	ErrCategoryConfig                          // Invalid configuration
)

// String returns the string representation of ErrorCategory
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryAssertion:
		return "assertion"
	case ErrCategoryConnection:
		return "connection"
	case ErrCategoryProxy:
		return "proxy"
	case ErrCategoryConfig:
		return "config"
	default:
		return "unknown"
	}
}


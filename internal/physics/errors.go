package physics

import (
	"errors"
	"fmt"
)

// Error kinds returned by the engine, sampler and scene validation.
var (
	// ErrDomain indicates a formula was evaluated outside its mathematical domain.
	ErrDomain = errors.New("physics: input outside formula domain")

	// ErrConfig indicates malformed setup: bad constants, bounds, selectors or an empty scene.
	ErrConfig = errors.New("physics: invalid configuration")
)

// DomainError reports which body and observable failed and why.
// Body is -1 when the failing body was evaluated outside a scene.
type DomainError struct {
	Body       int
	Observable Observable
	Reason     string
}

func (e *DomainError) Error() string {
	if e.Body < 0 {
		return fmt.Sprintf("%s: %s: %s", ErrDomain, e.Observable, e.Reason)
	}
	return fmt.Sprintf("%s: body %d: %s: %s", ErrDomain, e.Body, e.Observable, e.Reason)
}

func (e *DomainError) Unwrap() error {
	return ErrDomain
}

// ConfigError names the offending setting.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrConfig, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfig
}

func domainErr(obs Observable, format string, args ...any) error {
	return &DomainError{Body: -1, Observable: obs, Reason: fmt.Sprintf(format, args...)}
}

func configErr(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Kind classifies query failures.
type Kind int

const (
	KindConfigurationMissing Kind = iota + 1
	KindUnauthorized
	KindNetworkUnreachable
	KindBackend
)

func (k Kind) String() string {
	switch k {
	case KindConfigurationMissing:
		return "configuration_missing"
	case KindUnauthorized:
		return "unauthorized"
	case KindNetworkUnreachable:
		return "network_unreachable"
	case KindBackend:
		return "backend"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. Any *Error of the same Kind matches.
var (
	ErrConfigurationMissing = &Error{Kind: KindConfigurationMissing}
	ErrUnauthorized         = &Error{Kind: KindUnauthorized}
	ErrNetworkUnreachable   = &Error{Kind: KindNetworkUnreachable}
	ErrBackend              = &Error{Kind: KindBackend}
)

// Error is a classified query failure. Its message is meant for the user.
type Error struct {
	Kind    Kind
	Backend string
	Detail  string
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindConfigurationMissing:
		if e.Detail != "" {
			return e.Detail
		}
		return "No API key configured. Set GEMINI_API_KEY or run: rafey config"
	case KindUnauthorized:
		return fmt.Sprintf("The API key was rejected by %s. Check your API key.", e.backendName())
	case KindNetworkUnreachable:
		return "Unable to connect to AI service. Please check your internet connection."
	default:
		detail := e.Detail
		if detail == "" {
			detail = fmt.Sprintf("unexpected response from %s", e.backendName())
		}
		return "API Error: " + detail
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func (e *Error) backendName() string {
	if e.Backend == "" {
		return "the AI service"
	}
	return e.Backend
}

// KindOf returns the Kind of err, or 0 when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func missingCredential(backend, detail string) *Error {
	return &Error{Kind: KindConfigurationMissing, Backend: backend, Detail: detail}
}

// classify turns transport and unknown errors into *Error. Context errors
// and already classified errors pass through unchanged.
func classify(backend string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var classified *Error
	if errors.As(err, &classified) {
		return err
	}

	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &netErr) || errors.As(err, &urlErr) {
		return &Error{Kind: KindNetworkUnreachable, Backend: backend, Err: err}
	}

	return &Error{Kind: KindBackend, Backend: backend, Detail: err.Error(), Err: err}
}

// fromStatus classifies an HTTP status from a backend. detail may be empty.
func fromStatus(backend string, status int, detail string, err error) *Error {
	if status == 401 || status == 403 {
		return &Error{Kind: KindUnauthorized, Backend: backend, Detail: detail, Err: err}
	}
	if detail == "" {
		detail = fmt.Sprintf("Server error: %d", status)
	}
	return &Error{Kind: KindBackend, Backend: backend, Detail: detail, Err: err}
}

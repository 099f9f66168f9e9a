package api

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/velora-digital/siteauth/internal/common"
)

// ValidationError is a 4xx response carrying field-level messages. The UI
// renders Fields inline next to the inputs that caused them.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(e.Message)
	for _, k := range keys {
		b.WriteString("; ")
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Fields[k], ", "))
	}
	return b.String()
}

// AuthError is a rejected credential or two-factor code. It is surfaced to
// the initiating call and never retried; it also matches
// common.ErrUnauthorized so liveness callers can treat any 401 as a
// confirmed invalidation signal.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "authentication failed"
	}
	return e.Message
}

func (e *AuthError) Is(target error) bool {
	return target == common.ErrUnauthorized
}

// ServerError is any other non-2xx (or success=false) envelope response.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error (status %d)", e.Status)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// TransientError wraps a network, timeout, or read failure. Transient errors
// never mutate session state; the session watcher ignores them entirely.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient request failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

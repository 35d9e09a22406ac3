package scrape

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an acquisition or storage failure so the retry machinery
// can decide between retrying, backing off longer, or skipping the strategy.
type Kind int

const (
	KindTransient   Kind = iota // timeouts, connection resets, 5xx
	KindRateLimited             // HTTP 429, retried with a longer backoff
	KindAuth                    // invalid or missing credentials, never retried
	KindMalformed               // unparseable response or store URL, never retried
	KindStorage                 // document store failures, retried then fatal
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindRateLimited:
		return "rate_limited"
	case KindAuth:
		return "auth"
	case KindMalformed:
		return "malformed"
	case KindStorage:
		return "storage"
	}
	return "unknown"
}

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Transient(op string, err error) error {
	return &Error{Kind: KindTransient, Op: op, Err: err}
}

func RateLimited(op string, err error) error {
	return &Error{Kind: KindRateLimited, Op: op, Err: err}
}

func Auth(op string, err error) error {
	return &Error{Kind: KindAuth, Op: op, Err: err}
}

func Malformed(op string, err error) error {
	return &Error{Kind: KindMalformed, Op: op, Err: err}
}

func Storage(op string, err error) error {
	return &Error{Kind: KindStorage, Op: op, Err: err}
}

// FromStatus classifies a non-200 HTTP response: 429 is rate limited, 5xx is
// transient, 401/403 is an auth failure, any other 4xx is unrecoverable.
func FromStatus(op string, status int) error {
	err := fmt.Errorf("unexpected status %d", status)
	switch {
	case status == http.StatusTooManyRequests:
		return RateLimited(op, err)
	case status >= 500:
		return Transient(op, err)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return Auth(op, err)
	default:
		return Malformed(op, err)
	}
}

// KindOf returns the classification of err. Errors that carry no
// classification (raw network failures) are treated as transient.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransient
}

// Recoverable reports whether err is worth retrying on the same strategy.
func Recoverable(err error) bool {
	switch KindOf(err) {
	case KindTransient, KindRateLimited, KindStorage:
		return true
	}
	return false
}

// AcquisitionError is returned when every strategy was exhausted without
// producing a first page.
type AcquisitionError struct {
	Cause error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("all acquisition strategies failed: %v", e.Cause)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Cause
}

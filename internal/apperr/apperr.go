// Package apperr implements the error taxonomy of spec §7: a fixed
// set of kinds that the job engine and adapters branch on (retry vs.
// skip vs. fail) instead of matching error strings.
package apperr

import "errors"

// Kind is one of the taxonomy entries in spec §7.
type Kind int

const (
	Unknown Kind = iota
	NotConfigured
	AuthExpired
	RateLimited
	TransientNetwork
	Parse
	NotFound
	Cancelled
	Fatal
)

func (k Kind) String() string {
	switch k {
	case NotConfigured:
		return "NotConfigured"
	case AuthExpired:
		return "AuthExpired"
	case RateLimited:
		return "RateLimited"
	case TransientNetwork:
		return "TransientNetwork"
	case Parse:
		return "Parse"
	case NotFound:
		return "NotFound"
	case Cancelled:
		return "Cancelled"
	case Fatal:
		return "Fatal"
	default:
		return "Unknown"
	}
}

// Error wraps an underlying error with a taxonomy Kind.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.String()
	}
	return e.Op + ": " + e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a taxonomy error.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the Kind of err, or Unknown if err doesn't carry one.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Unknown
}

// Retryable reports whether the job engine should retry this error
// within its per-source budget (§7 propagation policy).
func Retryable(err error) bool {
	switch KindOf(err) {
	case RateLimited, TransientNetwork:
		return true
	default:
		return false
	}
}

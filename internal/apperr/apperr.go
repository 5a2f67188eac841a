package apperr

import "fmt"

// Kind classifies a domain failure so handlers can map it to an HTTP status
// without matching on message text.
type Kind int

const (
	Unexpected Kind = iota
	NotFound
	InvalidState
	AmountMismatch
	Conflict
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case InvalidState:
		return "invalid_state"
	case AmountMismatch:
		return "amount_mismatch"
	case Conflict:
		return "conflict"
	default:
		return "unexpected"
	}
}

// Error is a tagged domain error. Entity names the thing the failure is about
// (product, order, company, settlement).
type Error struct {
	Kind   Kind
	Entity string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

func NotFoundf(entity, format string, args ...interface{}) *Error {
	return &Error{Kind: NotFound, Entity: entity, Msg: fmt.Sprintf(format, args...)}
}

func InvalidStatef(entity, format string, args ...interface{}) *Error {
	return &Error{Kind: InvalidState, Entity: entity, Msg: fmt.Sprintf(format, args...)}
}

func AmountMismatchf(entity, format string, args ...interface{}) *Error {
	return &Error{Kind: AmountMismatch, Entity: entity, Msg: fmt.Sprintf(format, args...)}
}

func Conflictf(entity, format string, args ...interface{}) *Error {
	return &Error{Kind: Conflict, Entity: entity, Msg: fmt.Sprintf(format, args...)}
}

// Wrap tags an underlying failure as Unexpected unless it already carries a kind.
func Wrap(entity string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*Error); ok {
		return err
	}
	return &Error{Kind: Unexpected, Entity: entity, Err: err}
}

// KindOf extracts the kind from any error chain. Plain errors are Unexpected.
func KindOf(err error) Kind {
	for err != nil {
		if ae, ok := err.(*Error); ok {
			return ae.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return Unexpected
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Package xerr defines the small error taxonomy shared by every xshm
// data-path package: ring, events, shm and channel all return these
// codes directly rather than wrapping ad hoc strings.
package xerr

// Code is a small negative-integer error taxonomy surfaced directly by
// data-path calls instead of wrapped ad hoc strings.
type Code int

const (
	// InvalidParam means an argument shape violated a documented
	// precondition: nil, zero-length where disallowed, oversize record,
	// non-power-of-two size, undersized receive buffer.
	InvalidParam Code = -1
	// Memory means a mapping, allocation, or thread/goroutine creation
	// failed.
	Memory Code = -2
	// Timeout means a blocking wait expired with no event.
	Timeout Code = -3
	// Empty means a non-blocking read found nothing.
	Empty Code = -4
	// Exists means a creator collided with an existing named object.
	Exists Code = -5
	// NotFound means an opener could not find a named object.
	NotFound Code = -6
	// Access means a kernel-level wait/signal failed (handle closed,
	// permissions).
	Access Code = -7
)

func (c Code) String() string {
	switch c {
	case InvalidParam:
		return "INVALID_PARAM"
	case Memory:
		return "MEMORY"
	case Timeout:
		return "TIMEOUT"
	case Empty:
		return "EMPTY"
	case Exists:
		return "EXISTS"
	case NotFound:
		return "NOT_FOUND"
	case Access:
		return "ACCESS"
	default:
		return "UNKNOWN"
	}
}

// Error is a sentinel error carrying one of the Code values plus a short
// human-readable detail. Data-path primitives return these directly; they
// never retry internally.
type Error struct {
	code   Code
	detail string
}

func New(code Code, detail string) *Error {
	return &Error{code: code, detail: detail}
}

func (e *Error) Code() Code { return e.code }

func (e *Error) Error() string {
	if e.detail == "" {
		return e.code.String()
	}
	return e.code.String() + ": " + e.detail
}

// Is lets errors.Is(err, xerr.InvalidParamError) match any *Error with the
// same code, regardless of detail text.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.code == e.code
}

var (
	InvalidParamError = &Error{code: InvalidParam}
	MemoryError       = &Error{code: Memory}
	TimeoutError      = &Error{code: Timeout}
	EmptyError        = &Error{code: Empty}
	ExistsError       = &Error{code: Exists}
	NotFoundError     = &Error{code: NotFound}
	AccessError       = &Error{code: Access}
)

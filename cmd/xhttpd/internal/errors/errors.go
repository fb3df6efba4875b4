package errors

import "fmt"

// Kind classifies server failures by where they happen and how far they reach.
type Kind int

const (
	// SocketFailure: the listening socket could not be created or configured. Fatal.
	SocketFailure Kind = iota
	// BindFailure: the address is invalid, already bound or rejected by the platform. Fatal.
	BindFailure
	// ConnectionFailure: a read or write failed on one connection. Ends only that handler.
	ConnectionFailure
	// PeerClosed: the peer closed its side of the connection. Ends only that handler.
	PeerClosed
)

func (k Kind) Error() string {
	switch k {
	case SocketFailure:
		return "Socket creation failed"
	case BindFailure:
		return "Bind failed"
	case ConnectionFailure:
		return "Connection error"
	case PeerClosed:
		return "Peer closed connection"
	default:
		return fmt.Sprintf("Unknown server error: %d", k)
	}
}

// Fatal reports whether errors of this kind must terminate the server instance.
func (k Kind) Fatal() bool {
	return k == SocketFailure || k == BindFailure
}

// Error wraps an underlying failure with its Kind and the operation that produced it.
type Error struct {
	Kind       Kind
	Op         string
	underlying error
}

// New creates an Error of the given kind.
func New(kind Kind, op string, underlying error) *Error {
	return &Error{
		Kind:       kind,
		Op:         op,
		underlying: underlying,
	}
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Op)
	}
	if e.underlying != nil {
		return fmt.Sprintf("%s: %v", msg, e.underlying)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.underlying
}

// Is makes errors.Is(err, BindFailure) match any *Error of that kind.
func (e *Error) Is(target error) bool {
	if k, ok := target.(Kind); ok {
		return e.Kind == k
	}
	return false
}

// KindOf returns the Kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return 0, false
		}
		err = u.Unwrap()
	}
	return 0, false
}

package service

// ErrorKind classifies domain failures so the transport layer can map
// them to status codes without string matching.
type ErrorKind int

const (
	KindInvalidArgument ErrorKind = iota + 1 // malformed/missing input, fix the request
	KindNotFound                             // entity missing or not visible to the caller
	KindForbidden                            // entity exists, caller lacks permission
	KindInternal                             // I/O failure, safe to retry the whole operation
)

// Error is a typed domain failure. Message is part of the observable
// contract: clients and tests match on the exact text.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func invalidArgument(message string) *Error {
	return &Error{Kind: KindInvalidArgument, Message: message}
}

func notFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func internalError(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, cause: cause}
}

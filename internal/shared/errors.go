package shared

import (
	"context"
	"errors"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// ErrorKind classifies failures surfaced by the resolution engine.
type ErrorKind string

const (
	KindUnknown    ErrorKind = "unknown"
	KindNetwork    ErrorKind = "network"
	KindMalformed  ErrorKind = "malformed_document"
	KindLookup     ErrorKind = "lookup"
	KindFilesystem ErrorKind = "filesystem"
	KindInvalid    ErrorKind = "invalid_argument"
	KindCanceled   ErrorKind = "canceled"
)

// DocumentError names the offending key of a malformed document and the
// JSON type that was expected there.
type DocumentError struct {
	Document string
	Key      string
	Expected string
}

func (e *DocumentError) Error() string {
	if e.Expected == "" {
		return fmt.Sprintf("%s: invalid value at %q", e.Document, e.Key)
	}
	return fmt.Sprintf("%s: expected %s at %q", e.Document, e.Expected, e.Key)
}

func NetworkError(msg string, cause error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeUnavailable).
		WithMsg(msg).
		WithCause(cause)
}

// MalformedError reports a structural violation in document at key.
func MalformedError(document string, key string, expected string) error {
	cause := &DocumentError{Document: document, Key: key, Expected: expected}
	return errbuilder.New().
		WithCode(errbuilder.CodeDataLoss).
		WithMsg(cause.Error()).
		WithCause(cause)
}

// MalformedErrorWithCause reports a document that could not be parsed at all.
func MalformedErrorWithCause(document string, cause error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeDataLoss).
		WithMsg(fmt.Sprintf("%s: invalid json", document)).
		WithCause(cause)
}

func LookupError(msg string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(msg)
}

func FilesystemError(msg string, cause error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(msg).
		WithCause(cause)
}

func InvalidError(msg string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(msg)
}

// KindOf recovers the error kind from an error built by this package.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCanceled
	}
	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeUnavailable:
		return KindNetwork
	case errbuilder.CodeDataLoss:
		return KindMalformed
	case errbuilder.CodeNotFound:
		return KindLookup
	case errbuilder.CodeInternal:
		return KindFilesystem
	case errbuilder.CodeInvalidArgument:
		return KindInvalid
	default:
		return KindUnknown
	}
}

// DocumentErrorOf extracts the offending key of a malformed document error.
func DocumentErrorOf(err error) (*DocumentError, bool) {
	var docErr *DocumentError
	if errors.As(err, &docErr) {
		return docErr, true
	}
	return nil, false
}

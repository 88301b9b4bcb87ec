package sandbox

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"
)

// Kind classifies every failure that leaves the sandbox.
type Kind string

const (
	KindAccessDenied      Kind = "AccessDenied"
	KindNotFound          Kind = "NotFound"
	KindIsADirectory      Kind = "IsADirectory"
	KindNotADirectory     Kind = "NotADirectory"
	KindDirectoryNotEmpty Kind = "DirectoryNotEmpty"
	KindAlreadyExists     Kind = "AlreadyExists"
	KindInvalidArgument   Kind = "InvalidArgument"
	KindIOError           Kind = "IOError"
	KindCanceled          Kind = "Canceled"
)

const accessDeniedMessage = "access denied - path outside allowed directories"

// Sentinels for errors.Is. Only the Kind is compared.
var (
	ErrAccessDenied      = &Error{Kind: KindAccessDenied}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrIsADirectory      = &Error{Kind: KindIsADirectory}
	ErrNotADirectory     = &Error{Kind: KindNotADirectory}
	ErrDirectoryNotEmpty = &Error{Kind: KindDirectoryNotEmpty}
	ErrAlreadyExists     = &Error{Kind: KindAlreadyExists}
	ErrInvalidArgument   = &Error{Kind: KindInvalidArgument}
	ErrIOError           = &Error{Kind: KindIOError}
	ErrCanceled          = &Error{Kind: KindCanceled}

	// ErrConfiguration is returned by NewAllowList when a configured root
	// is missing or is not a directory.
	ErrConfiguration = errors.New("invalid allowed directory")
)

// Error is the structured failure returned by every FS operation.
type Error struct {
	Kind Kind
	Op   string
	// Path is the path as the caller supplied it, never a resolved form.
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Kind == KindAccessDenied {
		return accessDeniedMessage
	}

	msg := string(e.Kind)
	if e.Err != nil {
		msg = describe(e.Err)
	}

	switch {
	case e.Op != "" && e.Path != "":
		return fmt.Sprintf("%s %s: %s", e.Op, e.Path, msg)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, msg)
	default:
		return msg
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind, so the package sentinels work
// with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf reports the Kind of err, or KindIOError for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindIOError
}

func newError(kind Kind, op, path, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: fmt.Errorf(format, args...)}
}

func accessDenied(op, path string) *Error {
	return &Error{Kind: KindAccessDenied, Op: op, Path: path}
}

func invalidArgument(op, format string, args ...any) *Error {
	return newError(KindInvalidArgument, op, "", format, args...)
}

// classify translates an OS-level error into a sandbox *Error.
// Errors that are already classified pass through untouched.
func classify(op, path string, err error) error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return err
	}

	kind := KindIOError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		kind = KindCanceled
	case errors.Is(err, fs.ErrNotExist):
		kind = KindNotFound
	case errors.Is(err, syscall.ENOTEMPTY):
		kind = KindDirectoryNotEmpty
	case errors.Is(err, fs.ErrExist):
		kind = KindAlreadyExists
	case errors.Is(err, syscall.EISDIR):
		kind = KindIsADirectory
	case errors.Is(err, syscall.ENOTDIR):
		kind = KindNotADirectory
	}

	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// describe strips the path from *fs.PathError and *os.LinkError so that
// resolved locations never reach the caller.
func describe(err error) string {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err.Error()
	}
	var le *os.LinkError
	if errors.As(err, &le) {
		return le.Err.Error()
	}
	return err.Error()
}

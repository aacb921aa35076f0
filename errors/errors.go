// Package errors extends the standard errors package with a small
// aggregate type for collecting multiple independent failures, as happens
// when a document is decoded leniently and warnings accumulate alongside
// a final error.
package errors

import (
	"errors"
	"strings"
)

func New(text string) error {
	return errors.New(text)
}

func Unwrap(err error) error {
	return errors.Unwrap(err)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap annotates err with a prefix, in the manner of fmt.Errorf's %w verb,
// without pulling in fmt. It returns nil if err is nil.
func Wrap(prefix string, err error) error {
	if err == nil {
		return nil
	}
	return &wrapped{prefix: prefix, err: err}
}

type wrapped struct {
	prefix string
	err    error
}

func (w *wrapped) Error() string { return w.prefix + ": " + w.err.Error() }
func (w *wrapped) Unwrap() error { return w.err }

// Errors is a list of independently accumulated errors.
type Errors []error

// Error formats the list. An empty list yields "no errors" and a single
// error yields its own message. Otherwise the result is a "multiple
// errors:" header followed by each message on its own line, where every
// line after the header, including lines within messages, is prefixed with
// a tab.
func (errs Errors) Error() string {
	switch len(errs) {
	case 0:
		return "no errors"
	case 1:
		return errs[0].Error()
	default:
		var buf strings.Builder
		buf.WriteString("multiple errors:")
		for _, err := range errs {
			buf.WriteString("\n\t")
			msg := err.Error()
			msg = strings.ReplaceAll(msg, "\n", "\n\t")
			buf.WriteString(msg)
		}
		return buf.String()
	}
}

// Append returns errs with each non-nil err appended to it.
func (errs Errors) Append(err ...error) Errors {
	for _, e := range err {
		if e != nil {
			errs = append(errs, e)
		}
	}
	return errs
}

// Return prepares errs to be returned by a function, returning nil when
// errs is empty so that callers can range over a warning list uncondition-
// ally and still return a nil error on success.
func (errs Errors) Return() error {
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Union combines a number of errors into one Errors, flattening any
// argument that is itself an Errors. It returns nil if every argument is
// nil or empty.
func Union(errs ...error) error {
	var e Errors
	for _, err := range errs {
		switch err := err.(type) {
		case nil:
			continue
		case Errors:
			for _, inner := range err {
				if inner != nil {
					e = append(e, inner)
				}
			}
		default:
			e = append(e, err)
		}
	}
	return e.Return()
}

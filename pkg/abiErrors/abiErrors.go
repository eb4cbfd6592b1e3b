// Package abiErrors defines the error kinds surfaced by the conversion pipeline.
//
// Every failure is an *OpError carrying the operation that produced it and one of the
// Err* kinds below, so callers can branch with errors.Is while users still read a
// "<op>|<kind>|<cause>" message.
package abiErrors

import (
	"errors"
	"fmt"
)

var (
	ErrInput                 = errors.New("input error")
	ErrValidation            = errors.New("validation error")
	ErrExtraction            = errors.New("extraction error")
	ErrConversion            = errors.New("conversion error")
	ErrIO                    = errors.New("io error")
	ErrConfig                = errors.New("config error")
	ErrCompiler              = errors.New("compiler error")
	ErrFetch                 = errors.New("fetch error")
	ErrUnsupportedConversion = errors.New("unsupported conversion")
)

type OpError struct {
	Op   string
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s|%s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s|%s|%s", e.Op, e.Kind, e.Err)
}

func (e *OpError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// New builds an OpError from a human readable cause.
func New(op string, kind error, cause string) error {
	return &OpError{Op: op, Kind: kind, Err: errors.New(cause)}
}

func Newf(op string, kind error, format string, args ...any) error {
	return &OpError{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap tags err with op and kind. A nil err stays nil.
func Wrap(op string, kind error, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Kind: kind, Err: err}
}

// Wrapf tags err with op and kind and prefixes the cause with a formatted message.
func Wrapf(op string, kind error, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Kind: kind, Err: fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)}
}

// KindOf returns the kind of the first OpError in err's chain, or nil.
func KindOf(err error) error {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr.Kind
	}
	return nil
}

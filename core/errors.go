package core

import (
	"errors"
	"strings"
)

var (
	ErrUnknownRecordType     = errors.New("unknown record type")
	ErrUnsupportedFieldShape = errors.New("unsupported field shape")
	ErrMalformedMacroSite    = errors.New("malformed macro site")
	ErrGenerator             = errors.New("generator failure")
	ErrParse                 = errors.New("parse failure")
	ErrPrint                 = errors.New("print failure")
)

// Error reports a failure while translating one unit. Kind is one of the Err*
// sentinels above, so callers can match it with errors.Is.
type Error struct {
	Unit string
	Decl string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	parts := []string{}
	if e.Unit != "" {
		parts = append(parts, e.Unit)
	}
	if e.Decl != "" {
		parts = append(parts, e.Decl)
	}
	if e.Kind != nil {
		parts = append(parts, e.Kind.Error())
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() []error {
	errs := []error{}
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// withUnit stamps the unit name onto err when it is an *Error without one,
// otherwise wraps err as kind.
func withUnit(unit string, kind error, err error) error {
	var ce *Error
	if errors.As(err, &ce) {
		if ce.Unit == "" {
			ce.Unit = unit
		}
		return ce
	}
	return &Error{Unit: unit, Kind: kind, Err: err}
}

package main

import (
	"errors"
	"strings"
)

// multiError wraps errors that occur when several collaborators fail
// during shutdown.
type multiError []error

func (e multiError) Error() string {
	s := []string{}
	for _, se := range e {
		s = append(s, se.Error())
	}
	return strings.Join(s, ", ")
}

// Is checks if any of errors match provided sentinel error.
func (e multiError) Is(err error) bool {
	for _, se := range e {
		if errors.Is(se, err) {
			return true
		}
	}
	return false
}

// add appends err if it is not nil.
func (e *multiError) add(err error) {
	if err != nil {
		*e = append(*e, err)
	}
}

// ret returns untyped nil if error list is empty.
func (e multiError) ret() error {
	if len(e) > 0 {
		return e
	}
	return nil
}

package service

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInternal     = errors.New("internal")
)

func internalErr(err error) error {
	return fmt.Errorf("%w: %v", ErrInternal, err)
}

// tooLong rejects values that would not fit their column.
func tooLong(field, v string, max int) error {
	if utf8.RuneCountInString(v) > max {
		return fmt.Errorf("%w: %s is longer than %d characters", ErrValidation, field, max)
	}
	return nil
}

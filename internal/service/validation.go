package service

import (
	"net/mail"
	"strings"

	apperrors "github.com/spec-kit/logistics-console/pkg/util/errorutil"
)

const minPasswordLength = 8

// fieldErrors collects per-field validation messages.
type fieldErrors map[string]any

func (f fieldErrors) require(field, value string) {
	if strings.TrimSpace(value) == "" {
		f.add(field, field+" is required")
	}
}

func (f fieldErrors) email(field, value string) {
	if strings.TrimSpace(value) == "" {
		f.add(field, field+" is required")
		return
	}
	if _, err := mail.ParseAddress(value); err != nil {
		f.add(field, field+" must be a valid email address")
	}
}

func (f fieldErrors) add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return apperrors.NewValidationError("validation failed", f)
}

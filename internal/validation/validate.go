// Copyright 2026 Greenleaf Labs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package validation centralizes struct-tag validation for request payloads
// crossing into the catalog service (uploads, match requests, selection
// operations).
package validation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/greenleaf/labelstore/internal/apierrors"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Struct validates s against its `validate:"..."` struct tags and, on
// failure, returns an InputMalformed *apierrors.ServiceError naming the
// first offending field.
func Struct(s any) error {
	if err := instance().Struct(s); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return apierrors.InputMalformedf(
				fieldName(fe.Namespace()),
				"%s failed validation %q", fieldName(fe.Namespace()), fe.Tag(),
			)
		}
		return apierrors.Internalf(err, "validate request")
	}
	return nil
}

// fieldName strips the leading "Struct." namespace segment validator adds.
func fieldName(namespace string) string {
	parts := strings.SplitN(namespace, ".", 2)
	if len(parts) == 2 {
		return parts[1]
	}
	return namespace
}

// Var validates a single value against an inline tag, e.g.
// validation.Var(qty, "gte=0").
func Var(field any, tag string) error {
	if err := instance().Var(field, tag); err != nil {
		return apierrors.InputMalformedf("", fmt.Sprintf("value failed validation %q", tag))
	}
	return nil
}

// Copyright 2026 The Faqbot Authors
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"errors"
	"fmt"
)

// ValidationError reports a rejected rule mutation. Callers can use
// errors.As to extract the structured information, or IsValidationError
// to branch on the class:
//
//	if rules.IsValidationError(err) {
//	    reply with a corrective message, nothing was stored
//	}
type ValidationError struct {
	// Field is the rejected argument: "keyword" or "response".
	Field string
	// Reason is a human-readable description of the rejection.
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("rules: invalid %s: %s", e.Field, e.Reason)
}

// IsValidationError checks whether err is a *ValidationError.
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

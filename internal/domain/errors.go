package domain

import (
	"errors"
	"fmt"
)

// Validation errors. Callers match them with errors.Is; each one has a stable
// code shared by the HTTP and Kafka transports.
var (
	ErrDuplicateDescription  = errors.New("claim with the same description already exists")
	ErrPolicyNotFound        = errors.New("policy not found")
	ErrAmountExceedsPolicy   = errors.New("claim amount exceeds policy amount")
	ErrNegativeAmount        = errors.New("claim amount must not be negative")
	ErrDuplicateEmail        = errors.New("user with the same email already exists")
	ErrInvalidEmailFormat    = errors.New("email is not a valid address")
	ErrDuplicatePolicyNumber = errors.New("policy with this number already exists")
	ErrNonPositiveAmount     = errors.New("amount must be greater than zero")
	ErrMissingField          = errors.New("required field is missing")
)

// Store errors wrap the underlying driver error.
var (
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrStoreWrite       = errors.New("store write failed")
)

const (
	CodeDuplicateDescription  = "DUPLICATE_DESCRIPTION"
	CodePolicyNotFound        = "POLICY_NOT_FOUND"
	CodeAmountExceedsPolicy   = "AMOUNT_EXCEEDS_POLICY"
	CodeNegativeAmount        = "NEGATIVE_AMOUNT"
	CodeDuplicateEmail        = "DUPLICATE_EMAIL"
	CodeInvalidEmailFormat    = "INVALID_EMAIL_FORMAT"
	CodeDuplicatePolicyNumber = "DUPLICATE_POLICY_NUMBER"
	CodeNonPositiveAmount     = "NON_POSITIVE_AMOUNT"
	CodeMissingField          = "MISSING_FIELD"

	CodeInvalidRequest = "INVALID_REQUEST"
	CodeInternal       = "INTERNAL_ERROR"
)

var validationErrors = []struct {
	err  error
	code string
}{
	{ErrDuplicateDescription, CodeDuplicateDescription},
	{ErrPolicyNotFound, CodePolicyNotFound},
	{ErrAmountExceedsPolicy, CodeAmountExceedsPolicy},
	{ErrNegativeAmount, CodeNegativeAmount},
	{ErrDuplicateEmail, CodeDuplicateEmail},
	{ErrInvalidEmailFormat, CodeInvalidEmailFormat},
	{ErrDuplicatePolicyNumber, CodeDuplicatePolicyNumber},
	{ErrNonPositiveAmount, CodeNonPositiveAmount},
	{ErrMissingField, CodeMissingField},
}

// ValidationCode reports the code of the validation error wrapped by err.
// The second result is false for anything that is not a validation failure.
func ValidationCode(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	for _, v := range validationErrors {
		if errors.Is(err, v.err) {
			return v.code, true
		}
	}
	return "", false
}

// ErrorForCode is the inverse of ValidationCode. It returns nil for unknown
// codes.
func ErrorForCode(code string) error {
	for _, v := range validationErrors {
		if v.code == code {
			return v.err
		}
	}
	return nil
}

func MissingField(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, name)
}

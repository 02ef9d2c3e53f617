// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/sealkeeper/internal/errors"
)

var (
	// ownerIDRegex allows login names, e-mail addresses and UUIDs.
	ownerIDRegex = regexp.MustCompile(`^[A-Za-z0-9._@+\-]{1,128}$`)

	// tagRegex restricts backup tags and value keys to a storage-safe alphabet.
	tagRegex = regexp.MustCompile(`^[A-Za-z0-9._\-]{1,128}$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// OwnerID validates an owner identifier.
var OwnerID = validation.NewStringRuleWithError(
	func(s string) bool {
		return ownerIDRegex.MatchString(s)
	},
	validation.NewError("validation_owner_id", "must be 1-128 letters, digits or ._@+- characters"),
)

// Key validates a value key or backup tag.
var Key = validation.NewStringRuleWithError(
	func(s string) bool {
		return tagRegex.MatchString(s)
	},
	validation.NewError("validation_key", "must be 1-128 letters, digits or ._- characters"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

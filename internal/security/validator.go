package security

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// AssetURLRule is a validation rule for optional asset URLs.
// Empty values pass; use validation.Required to demand one.
type AssetURLRule struct {
	allowLocal bool
}

var _ validation.Rule = AssetURLRule{}

// AssetURL returns a rule applying ValidateAssetURL.
// If allowLocal is true, HTTP URLs for localhost are permitted (development mode)
func AssetURL(allowLocal bool) AssetURLRule {
	return AssetURLRule{allowLocal: allowLocal}
}

// Validate implements validation.Rule
func (r AssetURLRule) Validate(value interface{}) error {
	value, isNil := validation.Indirect(value)
	if isNil || validation.IsEmpty(value) {
		return nil
	}

	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("%w: must be a string", ErrUnsafeURL)
	}

	return ValidateAssetURL(s, r.allowLocal)
}

package snapshot

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// ValidatePolicyID rejects ids that cannot be a policy id. The id ends up in a
// URL path segment and a file name, so only alphanumerics pass.
func ValidatePolicyID(policyID string) error {
	err := validation.Validate(policyID,
		validation.Required,
		validation.Length(1, 128),
		is.Alphanumeric,
	)
	if err != nil {
		return fmt.Errorf("invalid policy id %q: %w", policyID, err)
	}
	return nil
}

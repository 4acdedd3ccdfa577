package registry

import "fmt"

// DuplicatePolicy controls what happens when a registration arrives for a
// (category, name) pair that is already present. The policy is checked
// explicitly at registration time; it is never inferred from call order.
type DuplicatePolicy string

const (
	// PolicyError rejects the new registration.
	PolicyError DuplicatePolicy = "error"
	// PolicyReplace silently overwrites the existing record.
	PolicyReplace DuplicatePolicy = "replace"
	// PolicyIgnore keeps the first registration and drops the new one.
	PolicyIgnore DuplicatePolicy = "ignore"
	// PolicyWarnReplace logs the collision and overwrites. This is the default.
	PolicyWarnReplace DuplicatePolicy = "warn-and-replace"
)

// DefaultPolicy is applied when no policy is configured.
const DefaultPolicy = PolicyWarnReplace

// ParsePolicy validates a configured policy string.
func ParsePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(s) {
	case PolicyError, PolicyReplace, PolicyIgnore, PolicyWarnReplace:
		return DuplicatePolicy(s), nil
	case "":
		return DefaultPolicy, nil
	}
	return "", fmt.Errorf("unknown duplicate policy %q (valid: error, replace, ignore, warn-and-replace)", s)
}

package audit

import (
	"fmt"
	"regexp"
	"strings"
)

// Well-known targets.
const (
	TargetThreshold   = "threshold"
	TargetAgentOutput = "agent_output"
)

var targetRegex = regexp.MustCompile(`^[A-Za-z0-9_\-]+(/[A-Za-z0-9_\-.@]+)*$`)

// ContextTarget returns the per-customer context target.
func ContextTarget(customerID string) string {
	return "context/" + customerID
}

// ValidateTarget rejects empty names, traversal segments, and characters
// outside the safe path alphabet.
func ValidateTarget(target string) error {
	if target == "" || strings.Contains(target, "..") || !targetRegex.MatchString(target) {
		return fmt.Errorf("%w: %q", ErrInvalidTarget, target)
	}
	return nil
}

package acl

import "fmt"

// Decision is the verdict a rule attaches to a matching request.
type Decision string

const (
	DecisionAllow Decision = "Allow"
	DecisionDeny  Decision = "Deny"
)

func (d Decision) Valid() bool {
	return d == DecisionAllow || d == DecisionDeny
}

func (d Decision) String() string {
	return string(d)
}

func ParseDecision(s string) (Decision, error) {
	switch s {
	case "Allow", "allow":
		return DecisionAllow, nil
	case "Deny", "deny":
		return DecisionDeny, nil
	default:
		return "", fmt.Errorf("%w: unknown decision %q", ErrInvalidDecision, s)
	}
}

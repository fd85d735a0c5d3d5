package acl

import "fmt"

// Action is a totally ordered set of operations a rule can grant or deny.
// The ordering matters: a rule scoped to a higher action implicitly covers
// every lower one (Write covers Execute and Read).
type Action uint8

const (
	ActionRead Action = iota + 1
	ActionExecute
	ActionWrite
)

// Covers reports whether a rule granted at level `granted` also applies to a
// request for `requested`. The relation is reflexive and applies identically
// to Allow and Deny rules: a Deny for Write also denies Read and Execute.
func (granted Action) Covers(requested Action) bool {
	return granted >= requested
}

func (a Action) Valid() bool {
	return a >= ActionRead && a <= ActionWrite
}

func (a Action) String() string {
	switch a {
	case ActionRead:
		return "Read"
	case ActionExecute:
		return "Execute"
	case ActionWrite:
		return "Write"
	default:
		return "Unknown"
	}
}

// ParseAction converts an action token to its Action value. Unrecognized
// tokens are a validation error, never coerced to a default.
func ParseAction(s string) (Action, error) {
	switch s {
	case "Read", "read":
		return ActionRead, nil
	case "Execute", "execute":
		return ActionExecute, nil
	case "Write", "write":
		return ActionWrite, nil
	default:
		return 0, fmt.Errorf("%w: unknown action %q", ErrInvalidAction, s)
	}
}

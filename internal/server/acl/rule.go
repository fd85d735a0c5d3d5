package acl

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// SelfUser is the sentinel user value meaning "the subject acting as itself".
const SelfUser = "self"

var (
	ErrInvalidAction   = errors.New("invalid action")
	ErrInvalidDecision = errors.New("invalid decision")
	ErrInvalidPattern  = errors.New("invalid path pattern")
	ErrInvalidRule     = errors.New("invalid rule")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrRuleNotFound    = errors.New("rule not found")
)

// Rule is a single access control record. Subject matches exactly, Path is a
// regular expression searched against the request path, User is either an
// identity or the SelfUser sentinel. CreateBy and CreateTime are audit
// attributes assigned by the store and never replaced on update.
type Rule struct {
	ID         int64    `db:"id"`
	Subject    string   `db:"subject"`
	Action     Action   `db:"action"`
	Path       string   `db:"path"`
	User       string   `db:"user"`
	Decision   Decision `db:"decision"`
	CreateBy   string   `db:"create_by"`
	CreateTime string   `db:"create_time"`
}

// Validate checks the user supplied fields of a rule. The path pattern must
// compile, otherwise the rule is rejected up front instead of silently never
// matching.
func (r *Rule) Validate() error {
	if r.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidRule)
	}
	if r.User == "" {
		return fmt.Errorf("%w: user is required", ErrInvalidRule)
	}
	if r.Path == "" {
		return fmt.Errorf("%w: path is required", ErrInvalidRule)
	}
	if !r.Action.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAction, r.Action)
	}
	if !r.Decision.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDecision, r.Decision)
	}
	if _, err := regexp.Compile(NormPath(r.Path)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return nil
}

// NormPath anchors a path or pattern at the root. Every stored pattern and
// every request path is matched in this form.
func NormPath(path string) string {
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Value implements driver.Valuer so Action is persisted by name, not as a raw
// integer.
func (a Action) Value() (driver.Value, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAction, a)
	}
	return a.String(), nil
}

// Scan implements sql.Scanner for Action.
func (a *Action) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidAction, src)
	}
	parsed, err := ParseAction(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

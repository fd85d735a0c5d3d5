package acl

import (
	"context"
	"fmt"
	"log/slog"
)

// Request is the descriptor a single authorization decision is evaluated
// against. User may be SelfUser to mean "the subject acting as itself".
type Request struct {
	Subject string
	User    string
	Action  Action
	Path    string
}

func (r *Request) Validate() error {
	if r.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidRequest)
	}
	if r.User == "" {
		return fmt.Errorf("%w: user is required", ErrInvalidRequest)
	}
	if r.Path == "" {
		return fmt.Errorf("%w: path is required", ErrInvalidRequest)
	}
	if !r.Action.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAction, r.Action)
	}
	return nil
}

// Engine resolves authorization requests against the stored rule set.
//
// Deny rules take precedence over Allow rules, and the absence of any
// matching rule is a deny. A store failure is surfaced as an error, not a
// verdict: callers must be able to tell "denied" apart from "could not
// evaluate".
type Engine struct {
	store   Store
	matcher *PathMatcher
}

func NewEngine(store Store) *Engine {
	return &Engine{
		store:   store,
		matcher: NewPathMatcher(),
	}
}

// IsAuthorized evaluates the request in three passes over the current rule
// set: any matching Deny rule denies, else any matching Allow rule allows,
// else the default verdict is deny.
func (e *Engine) IsAuthorized(ctx context.Context, req *Request) (bool, error) {
	if err := req.Validate(); err != nil {
		return false, err
	}

	rules, err := e.store.List(ctx)
	if err != nil {
		return false, fmt.Errorf("load rules: %w", err)
	}

	for _, rule := range rules {
		if rule.Decision != DecisionDeny {
			continue
		}
		if e.ruleMatches(rule, req) {
			slog.Debug("acl deny", "rule", rule.ID, "subject", req.Subject, "path", req.Path)
			return false, nil
		}
	}

	for _, rule := range rules {
		if rule.Decision != DecisionAllow {
			continue
		}
		if e.ruleMatches(rule, req) {
			slog.Debug("acl allow", "rule", rule.ID, "subject", req.Subject, "path", req.Path)
			return true, nil
		}
	}

	// default deny: no rule matched
	slog.Debug("acl default deny", "subject", req.Subject, "path", req.Path)
	return false, nil
}

// ruleMatches checks all four dimensions: exact subject, user (with the self
// sentinel resolved on both sides), action coverage and path pattern. A rule
// participates in a pass only if every dimension matches.
func (e *Engine) ruleMatches(rule *Rule, req *Request) bool {
	if rule.Subject != req.Subject {
		return false
	}
	if resolveUser(rule.User, rule.Subject) != resolveUser(req.User, req.Subject) {
		return false
	}
	if !rule.Action.Covers(req.Action) {
		return false
	}

	ok, err := e.matcher.Matches(rule.Path, req.Path)
	if err != nil {
		// Patterns are validated on create/update, so this only fires for
		// rows written outside the store. Treat as a non-match.
		slog.Warn("acl rule has invalid pattern", "rule", rule.ID, "pattern", rule.Path, "error", err)
		return false
	}
	return ok
}

// resolveUser maps the SelfUser sentinel to the subject so that "self" and an
// explicit subject identity compare equal.
func resolveUser(user, subject string) string {
	if user == SelfUser {
		return subject
	}
	return user
}

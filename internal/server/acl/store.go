package acl

import "context"

// Store is the persistence contract the engine needs. List is the
// authoritative rule set for every authorization decision; the engine does
// not cache rule sets across calls, so each decision reflects the persisted
// state at call time.
//
// Implementations must return ErrRuleNotFound for missing ids so callers can
// distinguish a missing rule from a storage failure.
type Store interface {
	Create(ctx context.Context, rule *Rule) (int64, error)
	Get(ctx context.Context, id int64) (*Rule, error)
	List(ctx context.Context) ([]*Rule, error)
	ListBySubject(ctx context.Context, subject string) ([]*Rule, error)
	ListBySubjectUser(ctx context.Context, subject, user string) ([]*Rule, error)
	Update(ctx context.Context, id int64, rule *Rule) error
	Delete(ctx context.Context, id int64) error
}

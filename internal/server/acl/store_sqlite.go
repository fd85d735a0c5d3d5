package acl

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const aclSchema = `
CREATE TABLE IF NOT EXISTS acl_rules (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	subject     TEXT NOT NULL,
	action      TEXT NOT NULL,
	path        TEXT NOT NULL,
	user        TEXT NOT NULL,
	decision    TEXT NOT NULL,
	create_by   TEXT NOT NULL,
	create_time TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_acl_rules_subject ON acl_rules(subject);
`

// SqliteStore persists rules in a sqlite table through sqlx.
type SqliteStore struct {
	db *sqlx.DB
}

func NewSqliteStore(db *sqlx.DB) (*SqliteStore, error) {
	if _, err := db.Exec(aclSchema); err != nil {
		return nil, fmt.Errorf("create acl schema: %w", err)
	}
	return &SqliteStore{db: db}, nil
}

// Create validates and inserts a rule. The id and create_time are assigned
// here; the caller supplies CreateBy. The stored path is anchored with
// NormPath so patterns and request paths always compare in the same form.
func (s *SqliteStore) Create(ctx context.Context, rule *Rule) (int64, error) {
	if err := rule.Validate(); err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO acl_rules (subject, action, path, user, decision, create_by, create_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rule.Subject, rule.Action, NormPath(rule.Path), rule.User, rule.Decision, rule.CreateBy, timestamp(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert rule: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert rule id: %w", err)
	}
	return id, nil
}

func (s *SqliteStore) Get(ctx context.Context, id int64) (*Rule, error) {
	var rule Rule
	err := s.db.GetContext(ctx, &rule, `SELECT * FROM acl_rules WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrRuleNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get rule %d: %w", id, err)
	}
	return &rule, nil
}

func (s *SqliteStore) List(ctx context.Context) ([]*Rule, error) {
	var rules []*Rule
	if err := s.db.SelectContext(ctx, &rules, `SELECT * FROM acl_rules ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	return rules, nil
}

func (s *SqliteStore) ListBySubject(ctx context.Context, subject string) ([]*Rule, error) {
	var rules []*Rule
	err := s.db.SelectContext(ctx, &rules,
		`SELECT * FROM acl_rules WHERE subject = ? ORDER BY id`, subject)
	if err != nil {
		return nil, fmt.Errorf("list rules for subject %q: %w", subject, err)
	}
	return rules, nil
}

func (s *SqliteStore) ListBySubjectUser(ctx context.Context, subject, user string) ([]*Rule, error) {
	var rules []*Rule
	err := s.db.SelectContext(ctx, &rules,
		`SELECT * FROM acl_rules WHERE subject = ? AND user = ? ORDER BY id`, subject, user)
	if err != nil {
		return nil, fmt.Errorf("list rules for subject %q user %q: %w", subject, user, err)
	}
	return rules, nil
}

// Update replaces the user supplied fields of an existing rule. The id,
// create_by and create_time columns are immutable.
func (s *SqliteStore) Update(ctx context.Context, id int64, rule *Rule) error {
	if err := rule.Validate(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE acl_rules SET subject = ?, action = ?, path = ?, user = ?, decision = ? WHERE id = ?`,
		rule.Subject, rule.Action, NormPath(rule.Path), rule.User, rule.Decision, id,
	)
	if err != nil {
		return fmt.Errorf("update rule %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update rule %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrRuleNotFound, id)
	}
	return nil
}

func (s *SqliteStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM acl_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete rule %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rule %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrRuleNotFound, id)
	}
	return nil
}

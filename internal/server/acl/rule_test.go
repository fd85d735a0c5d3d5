package acl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validRule() *Rule {
	return &Rule{
		Subject:  "tenants@admin",
		Action:   ActionWrite,
		Path:     "/tmp/testup.txt",
		User:     SelfUser,
		Decision: DecisionAllow,
	}
}

func TestRuleValidate(t *testing.T) {
	assert.NoError(t, validRule().Validate())
}

func TestRuleValidateRejects(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Rule)
		wantErr error
	}{
		{"empty subject", func(r *Rule) { r.Subject = "" }, ErrInvalidRule},
		{"empty user", func(r *Rule) { r.User = "" }, ErrInvalidRule},
		{"empty path", func(r *Rule) { r.Path = "" }, ErrInvalidRule},
		{"bad action", func(r *Rule) { r.Action = Action(9) }, ErrInvalidAction},
		{"bad decision", func(r *Rule) { r.Decision = "Maybe" }, ErrInvalidDecision},
		{"bad pattern", func(r *Rule) { r.Path = "/exam[" }, ErrInvalidPattern},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rule := validRule()
			tc.mutate(rule)
			assert.ErrorIs(t, rule.Validate(), tc.wantErr)
		})
	}
}

func TestNormPath(t *testing.T) {
	assert.Equal(t, "/tmp/foo", NormPath("tmp/foo"))
	assert.Equal(t, "/tmp/foo", NormPath("/tmp/foo"))
	assert.Equal(t, "/exam.*", NormPath("exam.*"))
}

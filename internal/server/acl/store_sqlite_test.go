package acl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmined/fileagent/internal/db"
)

func newTestStore(t *testing.T) *SqliteStore {
	t.Helper()

	// a single connection so the in-memory database is shared across queries
	sqldb, err := db.NewSqliteDb(db.WithPath(":memory:"), db.WithMaxOpenConns(1))
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })

	store, err := NewSqliteStore(sqldb)
	require.NoError(t, err)
	return store
}

func TestStoreCreateGetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rule := validRule()
	rule.CreateBy = "tenants@admin"

	id, err := store.Create(ctx, rule)
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, rule.Subject, got.Subject)
	assert.Equal(t, rule.Action, got.Action)
	assert.Equal(t, NormPath(rule.Path), got.Path)
	assert.Equal(t, rule.User, got.User)
	assert.Equal(t, rule.Decision, got.Decision)
	assert.Equal(t, "tenants@admin", got.CreateBy)
	assert.NotEmpty(t, got.CreateTime)
}

func TestStoreCreateAnchorsPath(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rule := validRule()
	rule.Path = "tmp/relative.txt"

	id, err := store.Create(ctx, rule)
	require.NoError(t, err)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/relative.txt", got.Path)
}

func TestStoreCreateRejectsInvalidPattern(t *testing.T) {
	store := newTestStore(t)

	rule := validRule()
	rule.Path = "/exam["

	_, err := store.Create(context.Background(), rule)
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestStoreGetNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), 999)
	assert.ErrorIs(t, err, ErrRuleNotFound)
}

func TestStoreList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rules, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, rules)

	for i := 0; i < 3; i++ {
		_, err := store.Create(ctx, validRule())
		require.NoError(t, err)
	}

	rules, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, rules, 3)
}

func TestStoreListBySubject(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := validRule()
	_, err := store.Create(ctx, first)
	require.NoError(t, err)

	second := validRule()
	second.Subject = "tenants@dev"
	second.User = "alice"
	_, err = store.Create(ctx, second)
	require.NoError(t, err)

	rules, err := store.ListBySubject(ctx, "tenants@dev")
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "tenants@dev", rules[0].Subject)

	rules, err = store.ListBySubjectUser(ctx, "tenants@dev", "alice")
	require.NoError(t, err)
	require.Len(t, rules, 1)

	rules, err = store.ListBySubjectUser(ctx, "tenants@dev", "bob")
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestStoreUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rule := validRule()
	rule.CreateBy = "tenants@admin"
	id, err := store.Create(ctx, rule)
	require.NoError(t, err)

	created, err := store.Get(ctx, id)
	require.NoError(t, err)

	updated := validRule()
	updated.Action = ActionRead
	updated.Decision = DecisionDeny
	updated.Path = "/exam.*"
	require.NoError(t, store.Update(ctx, id, updated))

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, ActionRead, got.Action)
	assert.Equal(t, DecisionDeny, got.Decision)
	assert.Equal(t, "/exam.*", got.Path)

	// audit attributes are immutable
	assert.Equal(t, created.CreateBy, got.CreateBy)
	assert.Equal(t, created.CreateTime, got.CreateTime)
}

func TestStoreUpdateNotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.Update(context.Background(), 999, validRule())
	assert.ErrorIs(t, err, ErrRuleNotFound)
}

func TestStoreDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, validRule())
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, id))

	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrRuleNotFound)

	assert.ErrorIs(t, store.Delete(ctx, id), ErrRuleNotFound)
}

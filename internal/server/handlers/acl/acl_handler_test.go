package acl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmined/fileagent/internal/db"
	"github.com/openmined/fileagent/internal/server/acl"
	"github.com/openmined/fileagent/internal/server/handlers/api"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sqldb, err := db.NewSqliteDb(db.WithPath(":memory:"), db.WithMaxOpenConns(1))
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })

	store, err := acl.NewSqliteStore(sqldb)
	require.NoError(t, err)

	h := NewACLHandler(store, acl.NewEngine(store))

	r := gin.New()
	r.POST("/acl", h.Create)
	r.GET("/acl/all", h.List)
	r.GET("/acl/id/:id", h.Get)
	r.PUT("/acl/id/:id", h.Update)
	r.DELETE("/acl/id/:id", h.Delete)
	r.GET("/acl/subject/:subject", h.ListBySubject)
	r.GET("/acl/subject/:subject/user/:user", h.ListBySubjectUser)
	r.GET("/acl/authz", h.Check)
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) *api.Response {
	t.Helper()
	var resp api.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return &resp
}

func ruleJSON(action, path, decision string) *RuleRequest {
	return &RuleRequest{
		Subject:  "tenants@admin",
		Action:   action,
		Path:     path,
		User:     acl.SelfUser,
		Decision: decision,
	}
}

func TestCreateRule(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/acl", ruleJSON("Write", "/tmp/testup.txt", "Allow"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeEnvelope(t, w)
	assert.Equal(t, api.StatusSuccess, resp.Status)

	result, ok := resp.Result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "tenants@admin", result["subject"])
	assert.Equal(t, "Write", result["action"])
	assert.Equal(t, "Allow", result["decision"])
	// without an authenticated subject, create_by falls back to the rule subject
	assert.Equal(t, "tenants@admin", result["create_by"])
	assert.NotEmpty(t, result["create_time"])
}

func TestCreateRuleRejectsUnknownAction(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/acl", ruleJSON("Delete", "/tmp/testup.txt", "Allow"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, api.CodeACLInvalidRule, decodeEnvelope(t, w).Code)
}

func TestCreateRuleRejectsInvalidPattern(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/acl", ruleJSON("Read", "[unterminated", "Allow"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, api.CodeACLInvalidRule, decodeEnvelope(t, w).Code)
}

func TestGetRuleNotFound(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/acl/id/42", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, api.CodeACLNotFound, decodeEnvelope(t, w).Code)
}

func TestUpdateAndDeleteRule(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/acl", ruleJSON("Read", "/tmp/testup.txt", "Allow"))
	require.Equal(t, http.StatusOK, w.Code)
	result := decodeEnvelope(t, w).Result.(map[string]any)
	id := int64(result["id"].(float64))

	w = doRequest(t, r, http.MethodPut, fmt.Sprintf("/acl/id/%d", id), ruleJSON("Write", "/tmp/.*", "Deny"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeEnvelope(t, w).Result.(map[string]any)
	assert.Equal(t, "Write", updated["action"])
	assert.Equal(t, "Deny", updated["decision"])
	assert.Equal(t, "/tmp/.*", updated["path"])

	w = doRequest(t, r, http.MethodDelete, fmt.Sprintf("/acl/id/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodGet, fmt.Sprintf("/acl/id/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListBySubject(t *testing.T) {
	r := newTestRouter(t)

	require.Equal(t, http.StatusOK, doRequest(t, r, http.MethodPost, "/acl", ruleJSON("Read", "/a", "Allow")).Code)

	other := ruleJSON("Read", "/b", "Allow")
	other.Subject = "tenants@guest"
	require.Equal(t, http.StatusOK, doRequest(t, r, http.MethodPost, "/acl", other).Code)

	w := doRequest(t, r, http.MethodGet, "/acl/subject/tenants@admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rules, ok := decodeEnvelope(t, w).Result.([]any)
	require.True(t, ok)
	assert.Len(t, rules, 1)

	w = doRequest(t, r, http.MethodGet, "/acl/subject/tenants@admin/user/self", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rules, ok = decodeEnvelope(t, w).Result.([]any)
	require.True(t, ok)
	assert.Len(t, rules, 1)

	w = doRequest(t, r, http.MethodGet, "/acl/all", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rules, ok = decodeEnvelope(t, w).Result.([]any)
	require.True(t, ok)
	assert.Len(t, rules, 2)
}

func TestCheckAuthorization(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/acl", ruleJSON("Write", "/tmp/testup.txt", "Allow"))
	require.Equal(t, http.StatusOK, w.Code)

	check := func(action, path string) bool {
		target := fmt.Sprintf("/acl/authz?subject=tenants@admin&user=self&action=%s&path=%s", action, path)
		w := doRequest(t, r, http.MethodGet, target, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		result := decodeEnvelope(t, w).Result.(map[string]any)
		return result["authorized"].(bool)
	}

	// a Write grant covers every lower action on the same path
	assert.True(t, check("Read", "tmp/testup.txt"))
	assert.True(t, check("Execute", "tmp/testup.txt"))
	assert.True(t, check("Write", "tmp/testup.txt"))
	assert.False(t, check("Read", "tmp/other.txt"))
}

func TestCheckRejectsUnknownAction(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/acl/authz?subject=a&user=self&action=Admin&path=/x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, api.CodeInvalidRequest, decodeEnvelope(t, w).Code)
}

func TestCheckRejectsMissingFields(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/acl/authz?subject=a&action=Read", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, api.CodeInvalidRequest, decodeEnvelope(t, w).Code)
}

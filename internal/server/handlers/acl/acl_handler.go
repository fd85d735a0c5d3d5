package acl

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openmined/fileagent/internal/server/acl"
	"github.com/openmined/fileagent/internal/server/handlers/api"
	"github.com/openmined/fileagent/internal/server/middlewares"
)

type ACLHandler struct {
	store  acl.Store
	engine *acl.Engine
}

func NewACLHandler(store acl.Store, engine *acl.Engine) *ACLHandler {
	return &ACLHandler{
		store:  store,
		engine: engine,
	}
}

func (h *ACLHandler) Create(ctx *gin.Context) {
	var req RuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, err)
		return
	}

	rule, err := ruleFromRequest(&req)
	if err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeACLInvalidRule, err)
		return
	}

	// audit attribute: who created the rule. With auth disabled there is no
	// authenticated subject, so fall back to the rule's own subject.
	rule.CreateBy = middlewares.Subject(ctx)
	if rule.CreateBy == "" {
		rule.CreateBy = rule.Subject
	}

	id, err := h.store.Create(ctx.Request.Context(), rule)
	if err != nil {
		abortWithACLError(ctx, err)
		return
	}

	created, err := h.store.Get(ctx.Request.Context(), id)
	if err != nil {
		abortWithACLError(ctx, err)
		return
	}

	api.OK(ctx, fmt.Sprintf("rule %d created", id), newRuleResponse(created))
}

func (h *ACLHandler) List(ctx *gin.Context) {
	rules, err := h.store.List(ctx.Request.Context())
	if err != nil {
		abortWithACLError(ctx, err)
		return
	}
	api.OK(ctx, "rules retrieved successfully", newRuleListResponse(rules))
}

func (h *ACLHandler) ListBySubject(ctx *gin.Context) {
	rules, err := h.store.ListBySubject(ctx.Request.Context(), ctx.Param("subject"))
	if err != nil {
		abortWithACLError(ctx, err)
		return
	}
	api.OK(ctx, "rules retrieved successfully", newRuleListResponse(rules))
}

func (h *ACLHandler) ListBySubjectUser(ctx *gin.Context) {
	rules, err := h.store.ListBySubjectUser(ctx.Request.Context(), ctx.Param("subject"), ctx.Param("user"))
	if err != nil {
		abortWithACLError(ctx, err)
		return
	}
	api.OK(ctx, "rules retrieved successfully", newRuleListResponse(rules))
}

func (h *ACLHandler) Get(ctx *gin.Context) {
	id, err := ruleID(ctx)
	if err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, err)
		return
	}

	rule, err := h.store.Get(ctx.Request.Context(), id)
	if err != nil {
		abortWithACLError(ctx, err)
		return
	}
	api.OK(ctx, fmt.Sprintf("rule %d retrieved", id), newRuleResponse(rule))
}

func (h *ACLHandler) Update(ctx *gin.Context) {
	id, err := ruleID(ctx)
	if err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, err)
		return
	}

	var req RuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, err)
		return
	}

	rule, err := ruleFromRequest(&req)
	if err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeACLInvalidRule, err)
		return
	}

	if err := h.store.Update(ctx.Request.Context(), id, rule); err != nil {
		abortWithACLError(ctx, err)
		return
	}

	updated, err := h.store.Get(ctx.Request.Context(), id)
	if err != nil {
		abortWithACLError(ctx, err)
		return
	}
	api.OK(ctx, fmt.Sprintf("rule %d updated", id), newRuleResponse(updated))
}

func (h *ACLHandler) Delete(ctx *gin.Context) {
	id, err := ruleID(ctx)
	if err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, err)
		return
	}

	if err := h.store.Delete(ctx.Request.Context(), id); err != nil {
		abortWithACLError(ctx, err)
		return
	}
	api.OK(ctx, fmt.Sprintf("rule %d deleted", id), nil)
}

// Check answers the authorization query: is {subject, user, action, path}
// allowed by the current rule set.
func (h *ACLHandler) Check(ctx *gin.Context) {
	var req CheckRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, err)
		return
	}

	action, err := acl.ParseAction(req.Action)
	if err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, err)
		return
	}

	authorized, err := h.engine.IsAuthorized(ctx.Request.Context(), &acl.Request{
		Subject: req.Subject,
		User:    req.User,
		Action:  action,
		Path:    req.Path,
	})
	if err != nil {
		// an evaluation failure is not a deny; surface it distinctly
		if errors.Is(err, acl.ErrInvalidRequest) || errors.Is(err, acl.ErrInvalidAction) {
			api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, err)
		} else {
			api.AbortWithError(ctx, http.StatusInternalServerError, api.CodeACLCheckFailed, err)
		}
		return
	}

	api.OK(ctx, "authorization check complete", &CheckResponse{
		Subject:    req.Subject,
		User:       req.User,
		Action:     action.String(),
		Path:       req.Path,
		Authorized: authorized,
	})
}

func ruleFromRequest(req *RuleRequest) (*acl.Rule, error) {
	action, err := acl.ParseAction(req.Action)
	if err != nil {
		return nil, err
	}
	decision, err := acl.ParseDecision(req.Decision)
	if err != nil {
		return nil, err
	}
	return &acl.Rule{
		Subject:  req.Subject,
		Action:   action,
		Path:     req.Path,
		User:     req.User,
		Decision: decision,
	}, nil
}

func ruleID(ctx *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid rule id %q", ctx.Param("id"))
	}
	return id, nil
}

func abortWithACLError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, acl.ErrRuleNotFound):
		api.AbortWithError(ctx, http.StatusNotFound, api.CodeACLNotFound, err)
	case errors.Is(err, acl.ErrInvalidRule),
		errors.Is(err, acl.ErrInvalidAction),
		errors.Is(err, acl.ErrInvalidDecision),
		errors.Is(err, acl.ErrInvalidPattern):
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeACLInvalidRule, err)
	default:
		api.AbortWithError(ctx, http.StatusInternalServerError, api.CodeACLStoreFailed, err)
	}
}

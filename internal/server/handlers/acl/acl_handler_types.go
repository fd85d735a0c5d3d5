package acl

import "github.com/openmined/fileagent/internal/server/acl"

type RuleRequest struct {
	Subject  string `json:"subject" binding:"required"`
	Action   string `json:"action" binding:"required"`
	Path     string `json:"path" binding:"required"`
	User     string `json:"user" binding:"required"`
	Decision string `json:"decision" binding:"required"`
}

type RuleResponse struct {
	ID         int64  `json:"id"`
	Subject    string `json:"subject"`
	Action     string `json:"action"`
	Path       string `json:"path"`
	User       string `json:"user"`
	Decision   string `json:"decision"`
	CreateBy   string `json:"create_by"`
	CreateTime string `json:"create_time"`
}

func newRuleResponse(rule *acl.Rule) *RuleResponse {
	return &RuleResponse{
		ID:         rule.ID,
		Subject:    rule.Subject,
		Action:     rule.Action.String(),
		Path:       rule.Path,
		User:       rule.User,
		Decision:   rule.Decision.String(),
		CreateBy:   rule.CreateBy,
		CreateTime: rule.CreateTime,
	}
}

func newRuleListResponse(rules []*acl.Rule) []*RuleResponse {
	out := make([]*RuleResponse, 0, len(rules))
	for _, rule := range rules {
		out = append(out, newRuleResponse(rule))
	}
	return out
}

type CheckRequest struct {
	Subject string `form:"subject" binding:"required"`
	User    string `form:"user" binding:"required"`
	Action  string `form:"action" binding:"required"`
	Path    string `form:"path" binding:"required"`
}

type CheckResponse struct {
	Subject    string `json:"subject"`
	User       string `json:"user"`
	Action     string `json:"action"`
	Path       string `json:"path"`
	Authorized bool   `json:"authorized"`
}

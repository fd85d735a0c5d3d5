package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openmined/fileagent/internal/version"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	// NoResult is the result payload for responses that carry none.
	NoResult = "none"
)

// Response is the envelope every endpoint answers with: a status, a human
// readable message, a result payload (or "none") and the agent version.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  any    `json:"result"`
	Version string `json:"version"`
	Code    string `json:"code,omitempty"`
}

// OK writes a success envelope with the given message and result.
func OK(ctx *gin.Context, message string, result any) {
	if result == nil {
		result = NoResult
	}
	ctx.PureJSON(http.StatusOK, &Response{
		Status:  StatusSuccess,
		Message: message,
		Result:  result,
		Version: version.Version,
	})
}

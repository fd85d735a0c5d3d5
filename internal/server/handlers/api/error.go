package api

import (
	"github.com/gin-gonic/gin"

	"github.com/openmined/fileagent/internal/version"
)

// AbortWithError aborts the request with an error envelope. The error text
// becomes the envelope message so callers see the attempted path, rule id or
// missing field that produced the failure.
func AbortWithError(ctx *gin.Context, status int, code string, err error) {
	ctx.Abort()
	ctx.Error(err)
	ctx.PureJSON(status, &Response{
		Status:  StatusError,
		Message: err.Error(),
		Result:  NoResult,
		Version: version.Version,
		Code:    code,
	})
}

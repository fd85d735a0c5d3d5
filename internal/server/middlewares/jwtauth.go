package middlewares

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openmined/fileagent/internal/server/auth"
)

const (
	bearerPrefix = "Bearer "
	authHeader   = "Authorization"

	// SubjectContextKey is the gin context key holding the authenticated
	// subject for the request.
	SubjectContextKey = "subject"
)

// JWTAuth validates the bearer token and stores the subject claim in the
// request context. With auth disabled the middleware passes everything
// through and handlers see an empty subject.
func JWTAuth(authService *auth.AuthService) gin.HandlerFunc {
	if !authService.IsEnabled() {
		slog.Info("auth middleware disabled")
		return func(ctx *gin.Context) {
			ctx.Next()
		}
	}
	slog.Info("auth middleware enabled")
	return func(ctx *gin.Context) {
		authHeaderValue := ctx.GetHeader(authHeader)
		if authHeaderValue == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header is missing",
			})
			return
		}

		if !strings.HasPrefix(authHeaderValue, bearerPrefix) {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header format must be Bearer {token}",
			})
			return
		}

		tokenString := strings.TrimPrefix(authHeaderValue, bearerPrefix)
		if tokenString == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Token is missing",
			})
			return
		}

		claims, err := authService.ValidateAccessToken(ctx, tokenString)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": err.Error(),
			})
			return
		}

		ctx.Set(SubjectContextKey, claims.Subject)
		ctx.Next()
	}
}

// Subject returns the authenticated subject for the request, if any.
func Subject(ctx *gin.Context) string {
	return ctx.GetString(SubjectContextKey)
}

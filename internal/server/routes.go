package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"

	aclHandlers "github.com/openmined/fileagent/internal/server/handlers/acl"
	"github.com/openmined/fileagent/internal/server/handlers/api"
	filesHandlers "github.com/openmined/fileagent/internal/server/handlers/files"
	"github.com/openmined/fileagent/internal/server/middlewares"
	"github.com/openmined/fileagent/internal/version"
)

func SetupRoutes(config *Config, svc *Services) http.Handler {
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20 // 8 MiB

	aclH := aclHandlers.NewACLHandler(svc.Store, svc.Engine)
	filesH := filesHandlers.NewFilesHandler(svc.Files, svc.Engine, config.ACL.Enforce)

	r.Use(middlewares.Logger())
	r.Use(gin.Recovery())
	r.Use(gzip.Gzip(gzip.BestSpeed))
	r.Use(cors.Default())
	r.Use(secure.New(secure.Config{
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	}))

	r.GET("/", IndexHandler)
	r.GET("/healthz", HealthHandler)
	r.GET("/status/ready", ReadyHandler)

	v1 := r.Group("/api/v1")
	v1.Use(middlewares.RateLimiter(config.HTTP.RateLimit))
	v1.Use(middlewares.JWTAuth(svc.Auth))
	{
		// acl management
		v1.POST("/acl", aclH.Create)
		v1.GET("/acl/all", aclH.List)
		v1.GET("/acl/id/:id", aclH.Get)
		v1.PUT("/acl/id/:id", aclH.Update)
		v1.DELETE("/acl/id/:id", aclH.Delete)
		v1.GET("/acl/subject/:subject", aclH.ListBySubject)
		v1.GET("/acl/subject/:subject/user/:user", aclH.ListBySubjectUser)

		// authorization query
		v1.GET("/acl/authz", aclH.Check)

		// file operations
		v1.GET("/files/list/*path", filesH.List)
		v1.GET("/files/contents/*path", filesH.Download)
		v1.POST("/files/contents/*path", filesH.Upload)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "not found",
		})
	})

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error": "method not allowed",
		})
	})

	return r.Handler()
}

func IndexHandler(ctx *gin.Context) {
	ctx.String(http.StatusOK, version.DetailedWithApp())
}

func HealthHandler(ctx *gin.Context) {
	ctx.PureJSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func ReadyHandler(ctx *gin.Context) {
	api.OK(ctx, "fileagent ready.", nil)
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}

package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"

	"github.com/openmined/fileagent/internal/server/handlers/api"
	"github.com/openmined/fileagent/internal/version"
)

var rateLimitStore = memory.NewStore()

func RateLimiter(formattedRate string) gin.HandlerFunc {
	rate, err := limiter.NewRateFromFormatted(formattedRate)
	if err != nil {
		panic(err)
	}
	limiter := limiter.New(rateLimitStore, rate)
	return mgin.NewMiddleware(
		limiter,
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			c.PureJSON(http.StatusTooManyRequests, &api.Response{
				Status:  api.StatusError,
				Message: "rate limit exceeded",
				Result:  api.NoResult,
				Version: version.Version,
				Code:    api.CodeRateLimited,
			})
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			c.PureJSON(http.StatusInternalServerError, &api.Response{
				Status:  api.StatusError,
				Message: err.Error(),
				Result:  api.NoResult,
				Version: version.Version,
				Code:    api.CodeInternalError,
			})
		}),
	)
}

package middleware

import (
	"net/http"
	"strconv"

	"pulsechat/internal/redis"
	"pulsechat/internal/services"
	"pulsechat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// MessageRateLimitMiddleware throttles message sends per user. Apply after
// the auth middleware on message endpoints.
func MessageRateLimitMiddleware(limiter *redis.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := services.UserFromContext(c.Request.Context())
		if err != nil {
			c.Next()
			return
		}

		result, err := limiter.AllowMessage(c.Request.Context(), userID.String())
		if err != nil {
			// Redis being down must not block sends.
			c.Next()
			return
		}

		setRateLimitHeaders(c, result)

		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, httpdto.NewErrorResponse("message rate limit exceeded", "RATE_LIMITED"))
			c.Abort()
			return
		}

		c.Next()
	}
}

func setRateLimitHeaders(c *gin.Context, result *redis.RateLimitResult) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(result.ResetIn.Seconds()), 10))
}

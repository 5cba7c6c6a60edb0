package middlewares

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type QuotaRule struct {
	Limit  int                       // requests allowed per window
	Window time.Duration             // window length, counted from the first request
	KeyFn  func(*gin.Context) string // empty key skips the quota
}

// PerUserDaily keys the quota on the authenticated caller.
func PerUserDaily(limit int) QuotaRule {
	return QuotaRule{
		Limit:  limit,
		Window: 24 * time.Hour,
		KeyFn: func(c *gin.Context) string {
			caller := CallerFrom(c)
			if !caller.Authenticated() {
				return ""
			}
			return fmt.Sprintf("quota:user:%s:day", caller.ID.Hex())
		},
	}
}

// Quota counts requests in Redis. When Redis is unreachable the request passes.
func Quota(rdb *redis.Client, rule QuotaRule) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rule.KeyFn(c)
		if key == "" || rule.Limit <= 0 {
			c.Next()
			return
		}
		ctx := c.Request.Context()

		n, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			Logger(c).Warn().Err(err).Msg("quota counter unavailable")
			c.Next()
			return
		}
		if n == 1 {
			_ = rdb.Expire(ctx, key, rule.Window).Err()
		}
		if int(n) > rule.Limit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "Usage quota exceeded. Please try again later.",
			})
			return
		}
		c.Header("X-Quota-Used", fmt.Sprintf("%d/%d", n, rule.Limit))
		c.Next()
	}
}

package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"eventapi/metrics"
	"eventapi/utils"
)

// TokenHeader carries the signed token on requests, and on the /api/auth response.
const TokenHeader = "x-auth-token"

const callerKey = "caller"

// Caller is either anonymous (the zero value) or an authenticated user.
type Caller struct {
	ID      primitive.ObjectID
	IsAdmin bool
	authed  bool
}

var Anonymous = Caller{}

func AuthenticatedCaller(id primitive.ObjectID, isAdmin bool) Caller {
	return Caller{ID: id, IsAdmin: isAdmin, authed: true}
}

func (c Caller) Authenticated() bool { return c.authed }

// CallerFrom returns the identity stored by Authenticate, or Anonymous.
func CallerFrom(c *gin.Context) Caller {
	if v, ok := c.Get(callerKey); ok {
		if caller, ok := v.(Caller); ok {
			return caller
		}
	}
	return Anonymous
}

type TokenVerifier interface {
	VerifyToken(token string) (*utils.Claims, error)
}

// Authenticate rejects a request without a token as 401 and a request with
// an unusable token as 400.
func Authenticate(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := tokens.VerifyToken(c.GetHeader(TokenHeader))
		if errors.Is(err, utils.ErrMissingToken) {
			metrics.AuthFailures.WithLabelValues("missing_token").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Access denied. No token provided."})
			return
		}
		if err != nil {
			metrics.AuthFailures.WithLabelValues("invalid_token").Inc()
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid token."})
			return
		}

		id, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			metrics.AuthFailures.WithLabelValues("invalid_token").Inc()
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid token."})
			return
		}

		c.Set(callerKey, AuthenticatedCaller(id, claims.IsAdmin))
		c.Next()
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin(c *gin.Context) {
	caller := CallerFrom(c)
	if !caller.Authenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Access denied. No token provided."})
		return
	}
	if !caller.IsAdmin {
		metrics.AuthFailures.WithLabelValues("not_admin").Inc()
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access denied."})
		return
	}
	c.Next()
}

// WithCaller hands the resolved identity to h as an argument.
func WithCaller(h func(c *gin.Context, caller Caller)) gin.HandlerFunc {
	return func(c *gin.Context) {
		h(c, CallerFrom(c))
	}
}

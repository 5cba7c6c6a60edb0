package middlewares

import (
	"bytes"
	"crypto/sha1"
	"encoding/gob"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type cachedBody struct {
	Status int
	Header map[string][]string
	Body   []byte
}

// headers that belong to one exchange and must not be replayed
var uncachedHeaders = map[string]bool{
	http.CanonicalHeaderKey(RequestIDHeader): true,
	"X-Cache":      true,
	"X-Quota-Used": true,
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// CacheKeyFrom returns the Redis key for a cacheable GET, or "" when the
// route is not cacheable. Only /api/<resource> and /api/<resource>/:id of the
// given resources qualify; deeper routes may depend on the caller.
func CacheKeyFrom(c *gin.Context, resources map[string]bool) string {
	if c.Request.Method != http.MethodGet {
		return ""
	}
	path := c.FullPath()
	parts := strings.Split(strings.TrimPrefix(path, "/api/"), "/")
	if !strings.HasPrefix(path, "/api/") || !resources[parts[0]] {
		return ""
	}

	switch {
	case len(parts) == 1:
		return "cache:" + parts[0] + ":list:" + sha1Hex("GET|"+path+"|"+c.Request.URL.RawQuery)
	case len(parts) == 2 && parts[1] == ":id":
		return "cache:" + parts[0] + ":item:" + sha1Hex("GET|"+path+"|"+c.Param("id"))
	default:
		return ""
	}
}

// ResponseCache replays 2xx GET responses for the listed resources from Redis.
// Writes purge entries through utils.CacheInvalidator.
func ResponseCache(rdb *redis.Client, ttl time.Duration, resources ...string) gin.HandlerFunc {
	cacheable := make(map[string]bool, len(resources))
	for _, r := range resources {
		cacheable[r] = true
	}

	return func(c *gin.Context) {
		key := CacheKeyFrom(c, cacheable)
		if key == "" {
			c.Next()
			return
		}
		ctx := c.Request.Context()

		if b, err := rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
			var hit cachedBody
			if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&hit); err == nil {
				for k, vals := range hit.Header {
					for _, v := range vals {
						c.Writer.Header().Add(k, v)
					}
				}
				c.Writer.Header().Set("X-Cache", "HIT")
				c.Status(hit.Status)
				_, _ = c.Writer.Write(hit.Body)
				c.Abort()
				return
			}
		}

		c.Writer.Header().Set("X-Cache", "MISS")
		bw := &bufferedWriter{ResponseWriter: c.Writer, buf: &bytes.Buffer{}}
		c.Writer = bw

		c.Next()

		if bw.Status() < 200 || bw.Status() >= 300 {
			return
		}
		header := map[string][]string{}
		for k, v := range bw.Header() {
			if !uncachedHeaders[http.CanonicalHeaderKey(k)] {
				header[k] = v
			}
		}
		var o bytes.Buffer
		item := cachedBody{Status: bw.Status(), Header: header, Body: bw.buf.Bytes()}
		if err := gob.NewEncoder(&o).Encode(item); err == nil {
			_ = rdb.Set(ctx, key, o.Bytes(), ttl).Err()
		}
	}
}

// bufferedWriter copies the body aside while it goes to the client.
type bufferedWriter struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

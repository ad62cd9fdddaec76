package middleware

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nevtik/eduvate-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// CacheControl sets the Cache-Control header for responses, usually static assets.
func CacheControl(maxAgeSeconds int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAgeSeconds))
		c.Next()
	}
}

// ResponseCache is a Redis-backed cache for hot GET endpoints, keyed on the
// full request URL. Entries expire by TTL only; writers never invalidate.
type ResponseCache struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

// NewResponseCache creates a ResponseCache with the given TTL.
func NewResponseCache(rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *ResponseCache {
	return &ResponseCache{
		rdb: rdb,
		ttl: ttl,
		log: log.With().Str("component", "response_cache").Logger(),
	}
}

// bodyCapture tees the response body so a 200 can be stored after the
// handler runs.
type bodyCapture struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// Middleware serves cached bodies on hit and stores successful GET
// responses on miss. Non-GET requests pass through untouched.
func (rc *ResponseCache) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		url := c.Request.URL.RequestURI()
		key := config.CacheKey.ResponseKey(url)

		cached, err := rc.rdb.Get(ctx, key).Bytes()
		if err == nil {
			contentType, _ := rc.rdb.Get(ctx, config.CacheKey.ResponseTypeKey(url)).Result()
			if contentType == "" {
				contentType = "application/json; charset=utf-8"
			}
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, contentType, cached)
			c.Abort()
			return
		}

		capture := &bodyCapture{ResponseWriter: c.Writer}
		c.Writer = capture
		c.Next()

		if c.Writer.Status() != http.StatusOK {
			return
		}

		if err := rc.rdb.Set(ctx, key, capture.buf.Bytes(), rc.ttl).Err(); err != nil {
			rc.log.Warn().Err(err).Str("url", url).Msg("Cache store failed")
			return
		}
		rc.rdb.Set(ctx, config.CacheKey.ResponseTypeKey(url), c.Writer.Header().Get("Content-Type"), rc.ttl)
	}
}

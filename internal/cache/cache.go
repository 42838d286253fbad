// Package cache provides a Redis-backed response cache for read-heavy
// board endpoints, plus prefix invalidation for the write paths.
package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"boardbuilder/internal/middleware"
)

const defaultTTL = 30 * time.Second

type Config struct {
	TTL       time.Duration
	KeyPrefix string
}

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Key builds the cache key for a request. Entries are scoped per user so a
// cached owner view never leaks to a collaborator with narrower rights.
func Key(prefix, userID, path, query string) string {
	sum := sha256.Sum256([]byte(path + "?" + query))
	return prefix + "user:" + userID + ":" + hex.EncodeToString(sum[:])
}

// Middleware serves GET responses from Redis when present. A nil client
// disables caching entirely, which is the single-node dev default.
func Middleware(client *redis.Client, cfg Config, logger *zap.Logger) gin.HandlerFunc {
	if client == nil {
		return func(c *gin.Context) { c.Next() }
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		userID := "anonymous"
		if id, ok := middleware.UserID(c); ok {
			userID = id.String()
		}
		key := Key(cfg.KeyPrefix, userID, c.Request.URL.Path, c.Request.URL.RawQuery)

		cached, err := client.Get(c.Request.Context(), key).Bytes()
		if err == nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", cached)
			c.Abort()
			return
		}
		if err != redis.Nil {
			logger.Warn("cache read failed", zap.Error(err), zap.String("key", key))
		}

		writer := &responseWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer
		c.Next()

		if writer.Status() == http.StatusOK && writer.body.Len() > 0 {
			if err := client.Set(c.Request.Context(), key, writer.body.Bytes(), ttl).Err(); err != nil {
				logger.Warn("cache write failed", zap.Error(err), zap.String("key", key))
			}
		}
	}
}

// Invalidate removes every entry under the prefix. Called after board
// mutations; a failed scan only delays expiry, it never blocks the write.
func Invalidate(ctx context.Context, client *redis.Client, prefix string) error {
	if client == nil {
		return nil
	}
	iter := client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return client.Del(ctx, keys...).Err()
}

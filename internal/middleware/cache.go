package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/renohq/quote-engine/internal/config"
)

// QuoteCache caches GET responses for quote-scoped routes in Redis. Cache
// keys embed a per-quote version counter; every committed mutation bumps
// the counter via Invalidate, so a reader on the same connection that just
// wrote always sees post-write totals. Superseded entries simply age out
// through the TTL.
type QuoteCache struct {
	cfg config.CacheConfig
	rdb *redis.Client
}

// NewQuoteCache constructs the cache. A nil Redis client disables it.
func NewQuoteCache(cfg config.CacheConfig, rdb *redis.Client) *QuoteCache {
	return &QuoteCache{cfg: cfg, rdb: rdb}
}

func (qc *QuoteCache) enabled() bool {
	return qc != nil && qc.cfg.Enabled && qc.rdb != nil
}

// Invalidate bumps the quote's cache version so no cached response built
// before the current mutation can be served again. Failures are ignored:
// the version key simply stays behind and entries expire by TTL.
func (qc *QuoteCache) Invalidate(ctx context.Context, quoteID uint64) {
	if !qc.enabled() {
		return
	}
	_ = qc.rdb.Incr(ctx, qc.versionKey(quoteID)).Err()
}

func (qc *QuoteCache) versionKey(quoteID uint64) string {
	return fmt.Sprintf("%s:quote:%d:ver", qc.cfg.Prefix, quoteID)
}

func (qc *QuoteCache) entryKey(quoteID uint64, version int64, c echo.Context) string {
	sum := sha1.Sum([]byte(c.Request().Method + "|" + c.Path() + "|" + c.Request().URL.RawQuery))
	return fmt.Sprintf("%s:quote:%d:v%d:%x", qc.cfg.Prefix, quoteID, version, sum[:])
}

// cacheWriter captures the response body and status while forwarding to
// the client.
type cacheWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *cacheWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *cacheWriter) Write(b []byte) (int, error) {
	if cw.limit <= 0 || cw.size < cw.limit {
		cw.buf.Write(b)
	}
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

// packEntry prepends the HTTP status to the body: [4 bytes status][body].
func packEntry(status int, body []byte) []byte {
	out := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	copy(out[4:], body)
	return out
}

func unpackEntry(bs []byte) (status int, body []byte, ok bool) {
	if len(bs) < 4 {
		return 0, nil, false
	}
	return int(binary.BigEndian.Uint32(bs[0:4])), bs[4:], true
}

// Middleware caches successful GET responses of routes whose ":id" path
// parameter is the quote ID.
func (qc *QuoteCache) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !qc.enabled() || c.Request().Method != http.MethodGet {
				return next(c)
			}
			quoteID, err := strconv.ParseUint(c.Param("id"), 10, 64)
			if err != nil {
				return next(c)
			}

			ctx := c.Request().Context()
			version, _ := qc.rdb.Get(ctx, qc.versionKey(quoteID)).Int64()
			key := qc.entryKey(quoteID, version, c)

			if bs, err := qc.rdb.Get(ctx, key).Bytes(); err == nil {
				if status, body, ok := unpackEntry(bs); ok {
					c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(status)
					_, _ = c.Response().Write(body)
					return nil
				}
			}

			cw := &cacheWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: int64(qc.cfg.MaxBodyBytes)}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			// Only cache complete 200 bodies; oversized ones were truncated
			// by the writer and must not be stored.
			if cw.status == http.StatusOK && (cw.limit <= 0 || cw.size <= cw.limit) {
				_ = qc.rdb.SetEx(context.Background(), key, packEntry(cw.status, cw.buf.Bytes()), qc.cfg.TTL).Err()
			}
			return nil
		}
	}
}

package cache

import (
	"bytes"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const htmlContentType = "text/html; charset=utf-8"

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Skipper reports whether a request path bypasses the cache.
type Skipper func(path string) bool

// Prefix skips paths starting with one of prefixes.
func Prefix(prefixes ...string) Skipper {
	return func(path string) bool {
		for _, prefix := range prefixes {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
		return false
	}
}

// Pattern skips paths matched by re.
func Pattern(re *regexp.Regexp) Skipper {
	return re.MatchString
}

// Middleware serves public pages from the cache and stores successful HTML
// responses. Paths reported by one of skip are never cached.
func (c *Cache) Middleware(skip ...Skipper) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if c == nil || ctx.Request.Method != http.MethodGet || skipped(ctx.Request.URL.Path, skip) {
			ctx.Next()
			return
		}

		key := ctx.Request.URL.RequestURI()
		if cached, found := c.Read(key); found {
			ctx.Header("X-Cache", "HIT")
			ctx.Data(http.StatusOK, htmlContentType, []byte(cached))
			ctx.Abort()
			return
		}

		ctx.Header("X-Cache", "MISS")
		writer := &responseWriter{
			ResponseWriter: ctx.Writer,
			body:           bytes.NewBuffer(nil),
		}
		ctx.Writer = writer

		ctx.Next()

		if ctx.Writer.Status() == http.StatusOK &&
			ctx.Writer.Header().Get("Content-Type") == htmlContentType {
			if err := c.Write(key, writer.body.String()); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("error writing page cache")
			}
		}
	}
}

func skipped(path string, skip []Skipper) bool {
	for _, s := range skip {
		if s(path) {
			return true
		}
	}
	return false
}

package cache

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCache(t *testing.T) *Cache {
	return New(t.TempDir(), time.Hour)
}

func TestNew_DisabledWithoutMaxAge(t *testing.T) {
	assert.Nil(t, New(t.TempDir(), 0))
}

func TestNilCache_NoOp(t *testing.T) {
	var c *Cache
	assert.NoError(t, c.Write("/", "x"))
	_, found := c.Read("/")
	assert.False(t, found)
	assert.NoError(t, c.ClearAll())
	assert.NoError(t, c.ClearOld())
}

func TestPath_StableAndDistinct(t *testing.T) {
	c := setupTestCache(t)
	assert.Equal(t, c.Path("/projects/?page=2"), c.Path("/projects/?page=2"))
	assert.NotEqual(t, c.Path("/projects/?page=2"), c.Path("/projects/?page=3"))
	assert.Equal(t, ".html", filepath.Ext(c.Path("/")))
}

func TestWriteRead(t *testing.T) {
	c := setupTestCache(t)

	require.NoError(t, c.Write("/about/", "<h1>About</h1>"))
	html, found := c.Read("/about/")
	assert.True(t, found)
	assert.Equal(t, "<h1>About</h1>", html)

	_, found = c.Read("/missing/")
	assert.False(t, found)
}

func TestRead_Expired(t *testing.T) {
	c := setupTestCache(t)
	require.NoError(t, c.Write("/", "old"))

	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(c.Path("/"), past, past))

	_, found := c.Read("/")
	assert.False(t, found)
}

func TestClearOld(t *testing.T) {
	c := setupTestCache(t)
	require.NoError(t, c.Write("/old/", "old"))
	require.NoError(t, c.Write("/new/", "new"))

	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(c.Path("/old/"), past, past))

	require.NoError(t, c.ClearOld())
	_, err := os.Stat(c.Path("/old/"))
	assert.True(t, os.IsNotExist(err))
	_, found := c.Read("/new/")
	assert.True(t, found)
}

func TestClearAll(t *testing.T) {
	c := setupTestCache(t)
	require.NoError(t, c.Write("/a/", "a"))
	require.NoError(t, c.Write("/b/", "b"))

	require.NoError(t, c.ClearAll())
	_, found := c.Read("/a/")
	assert.False(t, found)
	// clearing an empty cache is fine
	assert.NoError(t, c.ClearOld())
}

func setupTestRouter(c *Cache, calls *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(c.Middleware(Prefix("/admin"), Pattern(regexp.MustCompile(`^/items/\d+/$`))))
	router.GET("/page/", func(ctx *gin.Context) {
		*calls++
		ctx.Data(http.StatusOK, htmlContentType, []byte("<p>page</p>"))
	})
	router.GET("/admin/", func(ctx *gin.Context) {
		*calls++
		ctx.Data(http.StatusOK, htmlContentType, []byte("<p>admin</p>"))
	})
	router.GET("/items/", func(ctx *gin.Context) {
		*calls++
		ctx.Data(http.StatusOK, htmlContentType, []byte("<p>items</p>"))
	})
	router.GET("/items/:id/", func(ctx *gin.Context) {
		*calls++
		ctx.Data(http.StatusOK, htmlContentType, []byte("<p>item</p>"))
	})
	router.GET("/missing/", func(ctx *gin.Context) {
		*calls++
		ctx.Data(http.StatusNotFound, htmlContentType, []byte("<p>404</p>"))
	})
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestMiddleware_MissThenHit(t *testing.T) {
	c := setupTestCache(t)
	calls := 0
	router := setupTestRouter(c, &calls)

	w := get(router, "/page/")
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Equal(t, "<p>page</p>", w.Body.String())

	w = get(router, "/page/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.Equal(t, "<p>page</p>", w.Body.String())
	assert.Equal(t, 1, calls)

	// the query string is part of the key
	w = get(router, "/page/?page=2")
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)
}

func TestMiddleware_SkipsPrefixesAndErrors(t *testing.T) {
	c := setupTestCache(t)
	calls := 0
	router := setupTestRouter(c, &calls)

	get(router, "/admin/")
	w := get(router, "/admin/")
	assert.Empty(t, w.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)

	get(router, "/missing/")
	w = get(router, "/missing/")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Equal(t, 4, calls)
}

func TestMiddleware_PatternSkipsDetailOnly(t *testing.T) {
	c := setupTestCache(t)
	calls := 0
	router := setupTestRouter(c, &calls)

	get(router, "/items/3/")
	w := get(router, "/items/3/")
	assert.Empty(t, w.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)

	// the listing shares the prefix but is still cached
	get(router, "/items/")
	w = get(router, "/items/")
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.Equal(t, 3, calls)
}

func TestMiddleware_NilCachePassesThrough(t *testing.T) {
	calls := 0
	router := setupTestRouter(nil, &calls)

	get(router, "/page/")
	w := get(router, "/page/")
	assert.Empty(t, w.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)
}

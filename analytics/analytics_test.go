package analytics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestModule(t *testing.T) *AnalyticsModule {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	a := NewAnalyticsModule(db)
	require.NotNil(t, a)
	return a
}

func setupTestRouter(a *AnalyticsModule) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/project/:id", func(c *gin.Context) {
		a.TrackVisit(c, KindProject, 1)
		c.String(http.StatusOK, "ok")
	})
	router.GET("/blog/:slug", func(c *gin.Context) {
		a.TrackVisit(c, KindBlogPost, 7)
		c.String(http.StatusOK, "ok")
	})
	return router
}

func visit(router *gin.Engine, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", path, nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 Firefox/120.0")
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	router.ServeHTTP(w, req)
	return w
}

func visitCount(a *AnalyticsModule, kind string, objectID uint) int64 {
	var count int64
	a.db.Model(&Visit{}).Where("kind = ? AND object_id = ?", kind, objectID).Count(&count)
	return count
}

func TestNewAnalyticsModule_NilDB(t *testing.T) {
	assert.Nil(t, NewAnalyticsModule(nil))
}

func TestNilModule_NoOp(t *testing.T) {
	var a *AnalyticsModule
	router := setupTestRouter(a)

	w := visit(router, "/project/1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Result().Cookies())
	assert.Empty(t, a.VisitsByDay(7))
	assert.Empty(t, a.TopObjects(KindProject, 30, 5))
	a.Wait()
}

func TestTrackVisit_SetsVisitorCookie(t *testing.T) {
	a := setupTestModule(t)
	router := setupTestRouter(a)

	w := visit(router, "/project/1")
	a.Wait()

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, VisitorCookie, cookies[0].Name)
	assert.Len(t, cookies[0].Value, 36)

	var v Visit
	require.NoError(t, a.db.First(&v).Error)
	assert.Equal(t, KindProject, v.Kind)
	assert.Equal(t, uint(1), v.ObjectID)
	assert.Equal(t, cookies[0].Value, v.VisitorID)
	require.NotNil(t, v.Browser)
	assert.Equal(t, "Firefox", *v.Browser)
	require.NotNil(t, v.Language)
	assert.Equal(t, "pt-BR", *v.Language)
}

func TestTrackVisit_Throttled(t *testing.T) {
	a := setupTestModule(t)
	router := setupTestRouter(a)

	w := visit(router, "/project/1")
	a.Wait()
	cookie := w.Result().Cookies()[0]

	visit(router, "/project/1", cookie)
	a.Wait()
	assert.Equal(t, int64(1), visitCount(a, KindProject, 1))

	// another object is a new visit
	visit(router, "/blog/hello", cookie)
	a.Wait()
	assert.Equal(t, int64(1), visitCount(a, KindBlogPost, 7))

	// another visitor too
	visit(router, "/project/1")
	a.Wait()
	assert.Equal(t, int64(2), visitCount(a, KindProject, 1))
}

func TestTrackVisit_AfterThrottleWindow(t *testing.T) {
	a := setupTestModule(t)
	old := Visit{
		Kind:      KindProject,
		ObjectID:  1,
		VisitorID: "visitor",
		IP:        "127.0.0.1",
		CreatedAt: time.Now().UTC().Add(-time.Hour),
	}
	require.NoError(t, a.db.Create(&old).Error)

	router := setupTestRouter(a)
	visit(router, "/project/1", &http.Cookie{Name: VisitorCookie, Value: "visitor"})
	a.Wait()

	assert.Equal(t, int64(2), visitCount(a, KindProject, 1))
}

func TestTopObjects(t *testing.T) {
	a := setupTestModule(t)
	now := time.Now().UTC()
	for i, id := range []uint{1, 2, 2, 3, 3, 3} {
		v := Visit{Kind: KindBlogPost, ObjectID: id, VisitorID: "v", IP: "ip", CreatedAt: now.Add(-time.Duration(i) * time.Minute)}
		require.NoError(t, a.db.Create(&v).Error)
	}
	stale := Visit{Kind: KindBlogPost, ObjectID: 1, VisitorID: "v", IP: "ip", CreatedAt: now.AddDate(0, 0, -60)}
	require.NoError(t, a.db.Create(&stale).Error)
	other := Visit{Kind: KindProject, ObjectID: 9, VisitorID: "v", IP: "ip", CreatedAt: now}
	require.NoError(t, a.db.Create(&other).Error)

	top := a.TopObjects(KindBlogPost, 30, 2)
	require.Len(t, top, 2)
	assert.Equal(t, ObjectVisits{ObjectID: 3, Count: 3}, top[0])
	assert.Equal(t, ObjectVisits{ObjectID: 2, Count: 2}, top[1])
}

func TestVisitsByDay(t *testing.T) {
	a := setupTestModule(t)
	v := Visit{Kind: KindProject, ObjectID: 1, VisitorID: "v", IP: "ip", CreatedAt: time.Now().UTC()}
	require.NoError(t, a.db.Create(&v).Error)

	days := a.VisitsByDay(7)
	require.Len(t, days, 7)
	assert.Equal(t, time.Now().UTC().Format(dayFormat), days[6].Date)
	assert.Equal(t, int64(1), days[6].Count)
	assert.Equal(t, int64(0), days[0].Count)
}

func TestExtractBrowser(t *testing.T) {
	tests := map[string]string{
		"Mozilla/5.0 Chrome/120.0 Safari/537.36":           "Chrome",
		"Mozilla/5.0 Chrome/120.0 Safari/537.36 Edg/120.0": "Edge",
		"Mozilla/5.0 Chrome/120.0 Safari/537.36 OPR/100":   "Opera",
		"Mozilla/5.0 Version/17.0 Safari/605.1.15":         "Safari",
		"Mozilla/5.0 Gecko/20100101 Firefox/120.0":         "Firefox",
		"curl/8.0": "Other",
	}
	for ua, want := range tests {
		got := extractBrowser(ua)
		require.NotNil(t, got)
		assert.Equal(t, want, *got, ua)
	}
	assert.Nil(t, extractBrowser(""))
}

func TestExtractLanguage(t *testing.T) {
	lang := extractLanguage("en-US,en;q=0.9")
	require.NotNil(t, lang)
	assert.Equal(t, "en-US", *lang)
	assert.Nil(t, extractLanguage(""))
}

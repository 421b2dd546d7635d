package site

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"portfolio/analytics"
	"portfolio/database"
	"portfolio/models"
	"portfolio/tags"
	"portfolio/templates"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.RunMigrations(db))
	return db
}

func setupTestRouter(t *testing.T, siteModule *SiteModule) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	require.NoError(t, templates.Load(router))
	siteModule.RegisterRoutes(router)
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", path, nil)
	router.ServeHTTP(w, req)
	return w
}

func createTestProject(t *testing.T, db *gorm.DB, title string, techs ...string) *models.Project {
	project := &models.Project{
		Title:               title,
		Description:         "About " + title,
		DetailedDescription: "## Details\n\nBuilt with **care**.",
	}
	require.NoError(t, db.Create(project).Error)
	require.NoError(t, tags.SetProjectTechnologies(db, project, techs))
	return project
}

func TestHome(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.SocialLink{Name: "GitHub", URL: "https://github.com/ganesh", Active: true}).Error)
	require.NoError(t, db.Create(&models.Project{Title: "Featured One", Description: "d", Featured: true}).Error)
	require.NoError(t, db.Create(&models.Project{Title: "Hidden One", Description: "d"}).Error)
	router := setupTestRouter(t, NewSiteModule(db, nil, "http://example.com"))

	w := get(router, "/")

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Hi, I&#39;m Ganesh — a passionate Python Developer")
	assert.Contains(t, body, "Featured One")
	assert.NotContains(t, body, "Hidden One")
	assert.Contains(t, body, "https://github.com/ganesh")
}

func TestHome_CreatesSettingsOnce(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(t, NewSiteModule(db, nil, ""))

	get(router, "/")
	get(router, "/about/")

	var count int64
	db.Model(&models.SiteSettings{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestAbout(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.Skill{Name: "Django", Level: 90, Category: models.SkillBackend}).Error)
	require.NoError(t, db.Create(&models.Achievement{Title: "Hackathon winner", Unlocked: true}).Error)
	router := setupTestRouter(t, NewSiteModule(db, nil, ""))

	w := get(router, "/about/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Django")
	assert.Contains(t, w.Body.String(), "Hackathon winner")
}

func TestAbout_RedirectsWithoutTrailingSlash(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(t, NewSiteModule(db, nil, ""))

	w := get(router, "/about")
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/about/", w.Header().Get("Location"))
}

func TestProjects_Filters(t *testing.T) {
	db := setupTestDB(t)
	createTestProject(t, db, "Alpha", "Go", "Docker")
	createTestProject(t, db, "Beta", "Python")
	router := setupTestRouter(t, NewSiteModule(db, nil, ""))

	w := get(router, "/projects/?tech=Go")

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "/projects/1/")
	assert.NotContains(t, body, "/projects/2/")
	// the technology options still list every tag
	assert.Contains(t, body, `<option value="Python"`)
	assert.Contains(t, body, `<option value="Go" selected>`)
}

func TestProjects_InvalidParamsDoNotFail(t *testing.T) {
	db := setupTestDB(t)
	createTestProject(t, db, "Alpha")
	router := setupTestRouter(t, NewSiteModule(db, nil, ""))

	for _, path := range []string{"/projects/?page=abc", "/projects/?page=999", "/projects/?page=-1", "/projects/?search=%25"} {
		w := get(router, path)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestProjects_PaginationKeepsFilters(t *testing.T) {
	db := setupTestDB(t)
	for i := 0; i < 7; i++ {
		createTestProject(t, db, fmt.Sprintf("Shop %d", i))
	}
	router := setupTestRouter(t, NewSiteModule(db, nil, ""))

	w := get(router, "/projects/?search=shop")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `href="?page=2&search=shop"`)
}

func TestProjectDetail(t *testing.T) {
	db := setupTestDB(t)
	project := createTestProject(t, db, "Alpha", "Go")
	createTestProject(t, db, "Beta")
	router := setupTestRouter(t, NewSiteModule(db, nil, ""))

	w := get(router, fmt.Sprintf("/projects/%d/", project.ID))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<h2>Details</h2>")
	assert.Contains(t, body, "<strong>care</strong>")
	assert.Contains(t, body, "Beta")
}

func TestProjectDetail_NotFound(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(t, NewSiteModule(db, nil, ""))

	for _, path := range []string{"/projects/99/", "/projects/abc/"} {
		w := get(router, path)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Contains(t, w.Body.String(), "Page not found")
	}
}

func TestProjectDetail_NotFoundLogsBrokenContext(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Migrator().DropTable(&models.SocialLink{}))
	router := setupTestRouter(t, NewSiteModule(db, nil, ""))

	var buf bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = previous })

	w := get(router, "/projects/99/")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Page not found")
	assert.Contains(t, buf.String(), "error loading page context")
	assert.Contains(t, buf.String(), `"path":"/projects/99/"`)
}

func TestProjectDetail_TracksVisit(t *testing.T) {
	db := setupTestDB(t)
	analyticsDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := analyticsDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	tracker := analytics.NewAnalyticsModule(analyticsDB)

	project := createTestProject(t, db, "Alpha")
	router := setupTestRouter(t, NewSiteModule(db, tracker, ""))

	w := get(router, fmt.Sprintf("/projects/%d/", project.ID))
	tracker.Wait()

	assert.Equal(t, http.StatusOK, w.Code)
	var visits int64
	require.NoError(t, analyticsDB.Model(&analytics.Visit{}).
		Where("kind = ? AND object_id = ?", analytics.KindProject, project.ID).
		Count(&visits).Error)
	assert.Equal(t, int64(1), visits)
}

func TestGallery(t *testing.T) {
	db := setupTestDB(t)
	photos := &models.GalleryCategory{Name: "Photos", Slug: "photos"}
	art := &models.GalleryCategory{Name: "Art", Slug: "art"}
	require.NoError(t, db.Create(photos).Error)
	require.NoError(t, db.Create(art).Error)
	require.NoError(t, db.Create(&models.GalleryItem{Title: "Sunset", CategoryID: photos.ID}).Error)
	require.NoError(t, db.Create(&models.GalleryItem{Title: "Sketch", CategoryID: art.ID}).Error)
	router := setupTestRouter(t, NewSiteModule(db, nil, ""))

	w := get(router, "/gallery/?category=photos")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Sunset")
	assert.NotContains(t, w.Body.String(), "<strong>Sketch</strong>")

	w = get(router, "/gallery/?category=nope")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No items found.")
}

func TestProjectDetailPath(t *testing.T) {
	assert.True(t, ProjectDetailPath.MatchString("/projects/12/"))
	assert.False(t, ProjectDetailPath.MatchString("/projects/"))
	assert.False(t, ProjectDetailPath.MatchString("/projects/?page=2"))
	assert.False(t, ProjectDetailPath.MatchString("/projects/abc/"))
}

func TestTestimonials(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.Testimonial{Name: "Ann", Company: "Acme", Text: "Great work", Rating: 5}).Error)
	router := setupTestRouter(t, NewSiteModule(db, nil, ""))

	w := get(router, "/testimonials/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Great work")
	assert.Contains(t, w.Body.String(), "5/5")
}

func TestSitemap(t *testing.T) {
	db := setupTestDB(t)
	project := createTestProject(t, db, "Alpha")
	category := &models.BlogCategory{Name: "Go", Slug: "go"}
	require.NoError(t, db.Create(category).Error)
	require.NoError(t, db.Create(&models.BlogPost{Title: "Live", Slug: "live", CategoryID: category.ID, Published: true}).Error)
	require.NoError(t, db.Create(&models.BlogPost{Title: "Draft", Slug: "draft", CategoryID: category.ID}).Error)
	router := setupTestRouter(t, NewSiteModule(db, nil, "https://ganesh.dev/"))

	w := get(router, "/sitemap.xml")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/xml; charset=utf-8", w.Header().Get("Content-Type"))

	var set urlSet
	require.NoError(t, xml.Unmarshal(w.Body.Bytes(), &set))
	var locs []string
	for _, u := range set.URLs {
		locs = append(locs, u.Loc)
	}
	assert.Contains(t, locs, "https://ganesh.dev/")
	assert.Contains(t, locs, fmt.Sprintf("https://ganesh.dev/projects/%d/", project.ID))
	assert.Contains(t, locs, "https://ganesh.dev/blog/live/")
	assert.Contains(t, locs, "https://ganesh.dev/blog/category/go/")
	assert.NotContains(t, locs, "https://ganesh.dev/blog/draft/")
}

func TestFilterQuery(t *testing.T) {
	assert.Equal(t, "search=a+b&tech=Go", string(FilterQuery("tech", "Go", "search", "a b")))
	assert.Equal(t, "", string(FilterQuery("search", "  ", "tech", "")))
}

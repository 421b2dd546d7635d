package admin

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"portfolio/analytics"
	"portfolio/cache"
	"portfolio/models"
)

const (
	sessionKey   = "admin_email"
	passwordCost = 14

	dashboardDays     = 14
	dashboardTopLimit = 5
)

// Branding holds the strings shown in the admin header and page titles.
type Branding struct {
	SiteHeader string
	SiteTitle  string
	IndexTitle string
}

type AdminModule struct {
	db           *gorm.DB
	analytics    *analytics.AnalyticsModule
	cache        *cache.Cache
	branding     Branding
	email        string
	passwordHash string
	resources    map[string]resource
}

func NewAdminModule(db *gorm.DB, analyticsModule *analytics.AnalyticsModule, pageCache *cache.Cache, branding Branding, email, passwordHash string) *AdminModule {
	if passwordHash == "" {
		log.Warn().Msg("admin password hash not set - admin login disabled")
	}
	return &AdminModule{
		db:           db,
		analytics:    analyticsModule,
		cache:        pageCache,
		branding:     branding,
		email:        email,
		passwordHash: passwordHash,
		resources:    newResources(),
	}
}

func (a *AdminModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/admin/login", a.loginPage)
	router.POST("/admin/login", a.loginPost)
	router.GET("/admin/logout", a.logout)

	adminGroup := router.Group("/admin", a.requireAuth)
	{
		adminGroup.GET("/", a.dashboard)

		api := adminGroup.Group("/api")
		api.GET("/:resource", a.list)
		api.POST("/:resource", a.create)
		api.GET("/:resource/:id", a.get)
		api.PUT("/:resource/:id", a.update)
		api.DELETE("/:resource/:id", a.remove)
		api.PATCH("/:resource/:id/toggle/:field", a.toggle)
		api.PATCH("/:resource/:id/order", a.setOrder)
	}
}

func (a *AdminModule) requireAuth(c *gin.Context) {
	session := sessions.Default(c)
	email := session.Get(sessionKey)

	if email == nil {
		if strings.HasPrefix(c.Request.URL.Path, "/admin/api/") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Redirect(http.StatusFound, "/admin/login")
		c.Abort()
		return
	}

	c.Set(sessionKey, email)
	c.Next()
}

func (a *AdminModule) loginPage(c *gin.Context) {
	session := sessions.Default(c)
	if session.Get(sessionKey) != nil {
		c.Redirect(http.StatusFound, "/admin/")
		return
	}

	c.HTML(http.StatusOK, "admin_login.html", gin.H{"branding": a.branding})
}

func (a *AdminModule) loginPost(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	if a.passwordHash == "" || !strings.EqualFold(email, a.email) || !checkPasswordHash(password, a.passwordHash) {
		log.Warn().Str("email", email).Str("ip", c.ClientIP()).Msg("failed admin login")
		c.HTML(http.StatusUnauthorized, "admin_login.html", gin.H{
			"branding": a.branding,
			"error":    "Please enter the correct email and password.",
			"email":    email,
		})
		return
	}

	session := sessions.Default(c)
	session.Set(sessionKey, a.email)
	if err := session.Save(); err != nil {
		log.Error().Err(err).Msg("error saving admin session")
		c.HTML(http.StatusInternalServerError, "admin_login.html", gin.H{
			"branding": a.branding,
			"error":    "Could not start the session, try again.",
			"email":    email,
		})
		return
	}

	log.Info().Str("email", a.email).Msg("admin logged in")
	c.Redirect(http.StatusFound, "/admin/")
}

func (a *AdminModule) logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		log.Error().Err(err).Msg("error clearing admin session")
	}

	c.Redirect(http.StatusFound, "/admin/login")
}

type resourceCount struct {
	Name  string
	Label string
	Count int64
}

type categoryCount struct {
	Name  string
	Slug  string
	Count int64
}

// Chart rows carry a percentage of the largest value so bars can be drawn
// without template arithmetic.
type DayVisitChart struct {
	Date       string
	Count      int64
	Percentage float64
}

type ObjectVisitChart struct {
	Title      string
	URL        string
	Count      int64
	Percentage float64
}

func (a *AdminModule) dashboard(c *gin.Context) {
	counts := make([]resourceCount, 0, len(resourceOrder))
	for _, name := range resourceOrder {
		n, err := a.resources[name].count(a.db)
		if err != nil {
			a.dashboardError(c, err)
			return
		}
		counts = append(counts, resourceCount{Name: name, Label: resourceLabels[name], Count: n})
	}

	var blogCategories []categoryCount
	err := a.db.Model(&models.BlogCategory{}).
		Select("blog_categories.name, blog_categories.slug, COUNT(blog_posts.id) AS count").
		Joins("LEFT JOIN blog_posts ON blog_posts.category_id = blog_categories.id").
		Group("blog_categories.id").
		Order("blog_categories.name ASC").
		Scan(&blogCategories).Error
	if err != nil {
		a.dashboardError(c, err)
		return
	}

	var galleryCategories []categoryCount
	err = a.db.Model(&models.GalleryCategory{}).
		Select("gallery_categories.name, gallery_categories.slug, COUNT(gallery_items.id) AS count").
		Joins("LEFT JOIN gallery_items ON gallery_items.category_id = gallery_categories.id").
		Group("gallery_categories.id").
		Order("gallery_categories.name ASC").
		Scan(&galleryCategories).Error
	if err != nil {
		a.dashboardError(c, err)
		return
	}

	data := gin.H{
		"branding":           a.branding,
		"email":              c.GetString(sessionKey),
		"counts":             counts,
		"blog_categories":    blogCategories,
		"gallery_categories": galleryCategories,
		"analyticsEnabled":   a.analytics != nil,
	}

	if a.analytics != nil {
		data["visitsByDay"] = dayCharts(a.analytics.VisitsByDay(dashboardDays))
		data["topProjects"] = a.topProjects()
		data["topPosts"] = a.topPosts()
	}

	c.HTML(http.StatusOK, "admin_dashboard.html", data)
}

func (a *AdminModule) dashboardError(c *gin.Context, err error) {
	log.Error().Err(err).Msg("error loading admin dashboard")
	_ = c.Error(err)
	c.HTML(http.StatusInternalServerError, "admin_dashboard.html", gin.H{
		"branding": a.branding,
		"error":    "Could not load the dashboard.",
	})
}

func dayCharts(days []analytics.DayVisits) []DayVisitChart {
	maxVisits := int64(1)
	for _, day := range days {
		if day.Count > maxVisits {
			maxVisits = day.Count
		}
	}

	charts := make([]DayVisitChart, len(days))
	for i, day := range days {
		charts[i] = DayVisitChart{
			Date:       day.Date,
			Count:      day.Count,
			Percentage: float64(day.Count) / float64(maxVisits) * 100,
		}
	}
	return charts
}

func objectCharts(top []analytics.ObjectVisits, describe func(id uint) (string, string)) []ObjectVisitChart {
	maxVisits := int64(1)
	for _, o := range top {
		if o.Count > maxVisits {
			maxVisits = o.Count
		}
	}

	charts := make([]ObjectVisitChart, len(top))
	for i, o := range top {
		title, url := describe(o.ObjectID)
		charts[i] = ObjectVisitChart{
			Title:      title,
			URL:        url,
			Count:      o.Count,
			Percentage: float64(o.Count) / float64(maxVisits) * 100,
		}
	}
	return charts
}

func (a *AdminModule) topProjects() []ObjectVisitChart {
	top := a.analytics.TopObjects(analytics.KindProject, dashboardDays, dashboardTopLimit)
	return objectCharts(top, func(id uint) (string, string) {
		var project models.Project
		if err := a.db.Select("id", "title").First(&project, id).Error; err != nil {
			return "Deleted project", ""
		}
		return project.Title, fmt.Sprintf("/projects/%d/", project.ID)
	})
}

func (a *AdminModule) topPosts() []ObjectVisitChart {
	top := a.analytics.TopObjects(analytics.KindBlogPost, dashboardDays, dashboardTopLimit)
	return objectCharts(top, func(id uint) (string, string) {
		var post models.BlogPost
		if err := a.db.Select("id", "title", "slug").First(&post, id).Error; err != nil {
			return "Deleted post", ""
		}
		return post.Title, "/blog/" + post.Slug + "/"
	})
}

// clearCache drops every cached page after content changed.
func (a *AdminModule) clearCache() {
	if err := a.cache.ClearAll(); err != nil {
		log.Error().Err(err).Msg("error clearing page cache")
	}
}

// HashPassword returns the bcrypt hash stored in ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

var accentMap = map[rune]rune{
	'á': 'a', 'à': 'a', 'ã': 'a', 'â': 'a', 'ä': 'a', 'å': 'a', 'ā': 'a',
	'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e', 'ē': 'e',
	'í': 'i', 'ì': 'i', 'î': 'i', 'ï': 'i', 'ī': 'i',
	'ó': 'o', 'ò': 'o', 'õ': 'o', 'ô': 'o', 'ö': 'o', 'ø': 'o', 'ō': 'o',
	'ú': 'u', 'ù': 'u', 'û': 'u', 'ü': 'u', 'ū': 'u',
	'ç': 'c', 'ć': 'c', 'č': 'c',
	'ñ': 'n', 'ń': 'n',
	'ý': 'y', 'ÿ': 'y',
	'ß': 's',
}

const slugMaxLength = 50

// generateSlug turns a title into a lowercase ascii slug of at most 50
// characters, used when a slug field is left empty.
func generateSlug(title string) string {
	slug := strings.ToLower(title)
	slug = strings.Map(func(r rune) rune {
		if replacement, ok := accentMap[r]; ok {
			return replacement
		}
		return r
	}, slug)

	slug = strings.Map(func(r rune) rune {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-':
			return r
		case r == ' ' || r == '_':
			return '-'
		}
		return -1
	}, slug)

	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")

	if len(slug) > slugMaxLength {
		slug = strings.TrimRight(slug[:slugMaxLength], "-")
	}
	return slug
}

package site

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"portfolio/analytics"
	"portfolio/content"
)

// ProjectDetailPath matches project detail URLs but not the listing.
var ProjectDetailPath = regexp.MustCompile(`^/projects/\d+/$`)

type SiteModule struct {
	repo      *content.Repository
	pages     *Pages
	analytics *analytics.AnalyticsModule
	domain    string
}

func NewSiteModule(db *gorm.DB, analyticsModule *analytics.AnalyticsModule, domain string) *SiteModule {
	repo := content.New(db)
	return &SiteModule{
		repo:      repo,
		pages:     NewPages(repo),
		analytics: analyticsModule,
		domain:    strings.TrimSuffix(domain, "/"),
	}
}

func (s *SiteModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/", s.home)
	router.GET("/about/", s.about)
	router.GET("/projects/", s.projects)
	router.GET("/projects/:id/", s.projectDetail)
	router.GET("/gallery/", s.gallery)
	router.GET("/testimonials/", s.testimonials)
	router.GET("/sitemap.xml", s.sitemap)
}

func (s *SiteModule) home(c *gin.Context) {
	home, err := s.repo.Home()
	if err != nil {
		s.pages.Fail(c, err)
		return
	}

	s.pages.Render(c, "home.html", gin.H{
		"skills":            home.Skills,
		"featured_projects": home.FeaturedProjects,
		"featured_blogs":    home.FeaturedPosts,
		"testimonials":      home.Testimonials,
	})
}

func (s *SiteModule) about(c *gin.Context) {
	about, err := s.repo.About()
	if err != nil {
		s.pages.Fail(c, err)
		return
	}

	s.pages.Render(c, "about.html", gin.H{
		"title":          "About",
		"skills":         about.Skills,
		"achievements":   about.Achievements,
		"timeline_items": about.Timeline,
	})
}

func (s *SiteModule) projects(c *gin.Context) {
	filter := content.ProjectFilter{
		Search: c.Query("search"),
		Tech:   c.Query("tech"),
		Page:   c.Query("page"),
	}

	listing, err := s.repo.Projects(filter)
	if err != nil {
		s.pages.Fail(c, err)
		return
	}
	skills, err := s.repo.Skills()
	if err != nil {
		s.pages.Fail(c, err)
		return
	}

	s.pages.Render(c, "projects.html", gin.H{
		"title":            "Projects",
		"projects":         listing.Projects,
		"all_technologies": listing.AllTechnologies,
		"search_query":     filter.Search,
		"tech_filter":      filter.Tech,
		"filter_query":     FilterQuery("search", filter.Search, "tech", filter.Tech),
		"skills":           skills,
	})
}

func (s *SiteModule) projectDetail(c *gin.Context) {
	id, err := s.repo.ParseID(c.Param("id"))
	if err != nil {
		s.pages.Fail(c, err)
		return
	}

	detail, err := s.repo.Project(id)
	if err != nil {
		s.pages.Fail(c, err)
		return
	}

	s.analytics.TrackVisit(c, analytics.KindProject, detail.Project.ID)

	s.pages.Render(c, "project_detail.html", gin.H{
		"title":            detail.Project.Title,
		"project":          detail.Project,
		"related_projects": detail.Related,
	})
}

func (s *SiteModule) gallery(c *gin.Context) {
	filter := content.GalleryFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Page:     c.Query("page"),
	}

	listing, err := s.repo.Gallery(filter)
	if err != nil {
		s.pages.Fail(c, err)
		return
	}
	skills, err := s.repo.Skills()
	if err != nil {
		s.pages.Fail(c, err)
		return
	}

	s.pages.Render(c, "gallery.html", gin.H{
		"title":         "Gallery",
		"items":         listing.Items,
		"categories":    listing.Categories,
		"search_query":  filter.Search,
		"category_slug": filter.Category,
		"filter_query":  FilterQuery("search", filter.Search, "category", filter.Category),
		"skills":        skills,
	})
}

func (s *SiteModule) testimonials(c *gin.Context) {
	testimonials, err := s.repo.Testimonials()
	if err != nil {
		s.pages.Fail(c, err)
		return
	}

	s.pages.Render(c, "testimonials.html", gin.H{
		"title":        "Testimonials",
		"testimonials": testimonials,
	})
}

package blog

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"portfolio/analytics"
	"portfolio/content"
	"portfolio/site"
)

type BlogModule struct {
	repo      *content.Repository
	pages     *site.Pages
	analytics *analytics.AnalyticsModule
}

func NewBlogModule(db *gorm.DB, analyticsModule *analytics.AnalyticsModule) *BlogModule {
	repo := content.New(db)
	return &BlogModule{
		repo:      repo,
		pages:     site.NewPages(repo),
		analytics: analyticsModule,
	}
}

func (b *BlogModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/blogs/", b.index)
	router.GET("/blog/:slug/", b.post)
	router.GET("/blog/category/:slug/", b.category)
}

func (b *BlogModule) index(c *gin.Context) {
	filter := content.BlogFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Page:     c.Query("page"),
	}

	listing, err := b.repo.Blogs(filter)
	if err != nil {
		b.pages.Fail(c, err)
		return
	}
	skills, err := b.repo.Skills()
	if err != nil {
		b.pages.Fail(c, err)
		return
	}

	b.pages.Render(c, "blogs.html", gin.H{
		"title":          "Blog",
		"posts":          listing.Posts,
		"featured_posts": listing.Featured,
		"categories":     listing.Categories,
		"search_query":   filter.Search,
		"category_slug":  filter.Category,
		"filter_query":   site.FilterQuery("search", filter.Search, "category", filter.Category),
		"skills":         skills,
	})
}

func (b *BlogModule) post(c *gin.Context) {
	detail, err := b.repo.BlogPost(c.Param("slug"))
	if err != nil {
		b.pages.Fail(c, err)
		return
	}

	b.analytics.TrackVisit(c, analytics.KindBlogPost, detail.Post.ID)

	b.pages.Render(c, "blog_detail.html", gin.H{
		"title":         detail.Post.Title,
		"post":          detail.Post,
		"related_posts": detail.Related,
	})
}

func (b *BlogModule) category(c *gin.Context) {
	listing, err := b.repo.BlogCategory(c.Param("slug"), c.Query("page"))
	if err != nil {
		b.pages.Fail(c, err)
		return
	}

	b.pages.Render(c, "blog_category.html", gin.H{
		"title":    listing.Category.Name,
		"category": listing.Category,
		"posts":    listing.Posts,
	})
}

package content

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"portfolio/errs"
	"portfolio/models"
	"portfolio/settings"
	"portfolio/tags"
)

const (
	homeSkills           = 8
	homeFeaturedProjects = 3
	homeFeaturedPosts    = 2
	homeTestimonials     = 6
	relatedLimit         = 3
	featuredPostsLimit   = 2
)

// Repository answers the read queries of the public pages.
type Repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type ProjectListing struct {
	Projects        *Page[models.Project]
	AllTechnologies []string
	Filter          ProjectFilter
}

type ProjectDetail struct {
	Project models.Project
	Related []models.Project
}

type BlogListing struct {
	Posts      *Page[models.BlogPost]
	Featured   []models.BlogPost
	Categories []models.BlogCategory
	Filter     BlogFilter
}

type BlogPostDetail struct {
	Post    models.BlogPost
	Related []models.BlogPost
}

type CategoryListing struct {
	Category models.BlogCategory
	Posts    *Page[models.BlogPost]
}

type GalleryListing struct {
	Items      *Page[models.GalleryItem]
	Categories []models.GalleryCategory
	Filter     GalleryFilter
}

type Home struct {
	Skills           []models.Skill
	FeaturedProjects []models.Project
	FeaturedPosts    []models.BlogPost
	Testimonials     []models.Testimonial
}

type About struct {
	Skills       []models.Skill
	Achievements []models.Achievement
	Timeline     []models.TimelineItem
}

// Base is the context shared by every page.
type Base struct {
	Settings    *models.SiteSettings
	SocialLinks []models.SocialLink
}

type Sitemap struct {
	Projects   []models.Project
	Posts      []models.BlogPost
	Categories []models.BlogCategory
}

func notFound(what string, key interface{}, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %v: %w", what, key, errs.ErrNotFound)
	}
	return err
}

func published(db *gorm.DB) *gorm.DB {
	return db.Where("blog_posts.published = ?", true)
}

func (r *Repository) Base() (*Base, error) {
	s, err := settings.Get(r.db)
	if err != nil {
		return nil, err
	}
	links, err := r.SocialLinks()
	if err != nil {
		return nil, err
	}
	return &Base{Settings: s, SocialLinks: links}, nil
}

// ParseID reads a numeric path id. Anything else names no row.
func (r *Repository) ParseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("id %q: %w", raw, errs.ErrNotFound)
	}
	return uint(id), nil
}

func (r *Repository) Projects(f ProjectFilter) (*ProjectListing, error) {
	page, err := paginate[models.Project](r.db, f.Scope, models.ProjectOrdering, ProjectsPerPage, f.Page, "Technologies")
	if err != nil {
		return nil, err
	}

	// options come from every project, not only the filtered ones
	techs, err := tags.AllNames(r.db, tags.Projects)
	if err != nil {
		return nil, err
	}

	return &ProjectListing{Projects: page, AllTechnologies: techs, Filter: f}, nil
}

func (r *Repository) Project(id uint) (*ProjectDetail, error) {
	var detail ProjectDetail
	if err := r.db.Preload("Technologies").First(&detail.Project, id).Error; err != nil {
		return nil, notFound("project", id, err)
	}

	err := r.db.Preload("Technologies").
		Where("projects.id <> ?", id).
		Order(models.ProjectOrdering).
		Limit(relatedLimit).
		Find(&detail.Related).Error
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *Repository) Blogs(f BlogFilter) (*BlogListing, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		return f.Scope(published(db))
	}
	page, err := paginate[models.BlogPost](r.db, scope, models.BlogPostOrdering, BlogsPerPage, f.Page, "Category", "Tags")
	if err != nil {
		return nil, err
	}

	listing := &BlogListing{Posts: page, Filter: f}
	err = r.db.Scopes(published).
		Preload("Category").
		Where("blog_posts.featured = ?", true).
		Order(models.BlogPostOrdering).
		Limit(featuredPostsLimit).
		Find(&listing.Featured).Error
	if err != nil {
		return nil, err
	}

	if err := r.db.Order(models.BlogCategoryOrdering).Find(&listing.Categories).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

// BlogPost finds a published post. Drafts are reported as not found.
func (r *Repository) BlogPost(slug string) (*BlogPostDetail, error) {
	var detail BlogPostDetail
	err := r.db.Scopes(published).
		Preload("Category").
		Preload("Tags").
		Where("blog_posts.slug = ?", slug).
		First(&detail.Post).Error
	if err != nil {
		return nil, notFound("blog post", slug, err)
	}

	err = r.db.Scopes(published).
		Preload("Category").
		Where("blog_posts.category_id = ? AND blog_posts.id <> ?", detail.Post.CategoryID, detail.Post.ID).
		Order(models.BlogPostOrdering).
		Limit(relatedLimit).
		Find(&detail.Related).Error
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *Repository) BlogCategory(slug, rawPage string) (*CategoryListing, error) {
	var listing CategoryListing
	if err := r.db.Where("slug = ?", slug).First(&listing.Category).Error; err != nil {
		return nil, notFound("blog category", slug, err)
	}

	categoryID := listing.Category.ID
	scope := func(db *gorm.DB) *gorm.DB {
		return published(db).Where("blog_posts.category_id = ?", categoryID)
	}
	page, err := paginate[models.BlogPost](r.db, scope, models.BlogPostOrdering, BlogsPerPage, rawPage, "Category", "Tags")
	if err != nil {
		return nil, err
	}
	listing.Posts = page
	return &listing, nil
}

func (r *Repository) Gallery(f GalleryFilter) (*GalleryListing, error) {
	page, err := paginate[models.GalleryItem](r.db, f.Scope, models.GalleryItemOrdering, GalleryPerPage, f.Page, "Category", "Tags")
	if err != nil {
		return nil, err
	}

	listing := &GalleryListing{Items: page, Filter: f}
	if err := r.db.Order(models.GalleryCategoryOrdering).Find(&listing.Categories).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

func (r *Repository) Home() (*Home, error) {
	var home Home

	if err := r.db.Order(models.SkillOrdering).Limit(homeSkills).Find(&home.Skills).Error; err != nil {
		return nil, err
	}
	err := r.db.Preload("Technologies").
		Where("featured = ?", true).
		Order(models.ProjectOrdering).
		Limit(homeFeaturedProjects).
		Find(&home.FeaturedProjects).Error
	if err != nil {
		return nil, err
	}
	err = r.db.Scopes(published).
		Preload("Category").
		Where("blog_posts.featured = ?", true).
		Order(models.BlogPostOrdering).
		Limit(homeFeaturedPosts).
		Find(&home.FeaturedPosts).Error
	if err != nil {
		return nil, err
	}
	err = r.db.Where("featured = ?", true).
		Order(models.TestimonialOrdering).
		Limit(homeTestimonials).
		Find(&home.Testimonials).Error
	if err != nil {
		return nil, err
	}
	return &home, nil
}

func (r *Repository) About() (*About, error) {
	var about About
	var err error

	if about.Skills, err = r.Skills(); err != nil {
		return nil, err
	}
	if err := r.db.Order(models.AchievementOrdering).Find(&about.Achievements).Error; err != nil {
		return nil, err
	}
	if err := r.db.Order(models.TimelineItemOrdering).Find(&about.Timeline).Error; err != nil {
		return nil, err
	}
	return &about, nil
}

func (r *Repository) Testimonials() ([]models.Testimonial, error) {
	var testimonials []models.Testimonial
	err := r.db.Order(models.TestimonialOrdering).Find(&testimonials).Error
	return testimonials, err
}

func (r *Repository) Skills() ([]models.Skill, error) {
	var skills []models.Skill
	err := r.db.Order(models.SkillOrdering).Find(&skills).Error
	return skills, err
}

// SocialLinks returns the active links only.
func (r *Repository) SocialLinks() ([]models.SocialLink, error) {
	var links []models.SocialLink
	err := r.db.Where("active = ?", true).Order(models.SocialLinkOrdering).Find(&links).Error
	return links, err
}

func (r *Repository) Sitemap() (*Sitemap, error) {
	var sm Sitemap
	if err := r.db.Order(models.ProjectOrdering).Find(&sm.Projects).Error; err != nil {
		return nil, err
	}
	if err := r.db.Scopes(published).Order(models.BlogPostOrdering).Find(&sm.Posts).Error; err != nil {
		return nil, err
	}
	if err := r.db.Order(models.BlogCategoryOrdering).Find(&sm.Categories).Error; err != nil {
		return nil, err
	}
	return &sm, nil
}

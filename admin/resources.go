package admin

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"portfolio/errs"
	"portfolio/models"
	"portfolio/settings"
	"portfolio/tags"
)

var errForbidden = errors.New("operation not allowed")

// resource is one administrable model behind /admin/api/:resource.
type resource interface {
	list(db *gorm.DB) (any, error)
	get(db *gorm.DB, id uint) (any, error)
	create(c *gin.Context, db *gorm.DB) (any, error)
	update(c *gin.Context, db *gorm.DB, id uint) (any, error)
	toggle(db *gorm.DB, id uint, field string) (any, error)
	setOrder(db *gorm.DB, id uint, order int) (any, error)
	remove(db *gorm.DB, id uint) error
	count(db *gorm.DB) (int64, error)
}

var resourceOrder = []string{
	"skills",
	"achievements",
	"projects",
	"blog-categories",
	"blog-posts",
	"gallery-categories",
	"gallery-items",
	"testimonials",
	"social-links",
	"timeline-items",
	"settings",
}

var resourceLabels = map[string]string{
	"skills":             "Skills",
	"achievements":       "Achievements",
	"projects":           "Projects",
	"blog-categories":    "Blog categories",
	"blog-posts":         "Blog posts",
	"gallery-categories": "Gallery categories",
	"gallery-items":      "Gallery items",
	"testimonials":       "Testimonials",
	"social-links":       "Social links",
	"timeline-items":     "Timeline items",
	"settings":           "Site settings",
}

func newResources() map[string]resource {
	return map[string]resource{
		"skills": &crud[models.Skill]{
			ordering:  models.SkillOrdering,
			orderable: true,
			defaults:  func(s *models.Skill) { s.Category = models.SkillOther },
		},
		"achievements": &crud[models.Achievement]{
			ordering:  models.AchievementOrdering,
			toggles:   []string{"unlocked"},
			orderable: true,
			defaults:  func(a *models.Achievement) { a.Unlocked = true },
		},
		"projects": &crud[models.Project]{
			ordering:  models.ProjectOrdering,
			preloads:  []string{"Technologies"},
			toggles:   []string{"featured"},
			orderable: true,
			tagField:  "technologies",
			setTags:   tags.SetProjectTechnologies,
		},
		"blog-categories": &crud[models.BlogCategory]{
			ordering: models.BlogCategoryOrdering,
			prepare: func(_ *gorm.DB, bc *models.BlogCategory) error {
				if bc.Slug == "" {
					bc.Slug = generateSlug(bc.Name)
				}
				return nil
			},
		},
		"blog-posts": &crud[models.BlogPost]{
			ordering: models.BlogPostOrdering,
			preloads: []string{"Category", "Tags"},
			toggles:  []string{"featured", "published"},
			defaults: func(p *models.BlogPost) {
				p.Published = true
				p.ReadTime = 5
			},
			prepare: func(db *gorm.DB, p *models.BlogPost) error {
				if p.Slug == "" {
					p.Slug = generateSlug(p.Title)
				}
				return categoryExists(db, &models.BlogCategory{}, p.CategoryID)
			},
			tagField: "tags",
			setTags:  tags.SetBlogPostTags,
		},
		"gallery-categories": &crud[models.GalleryCategory]{
			ordering: models.GalleryCategoryOrdering,
			prepare: func(_ *gorm.DB, gc *models.GalleryCategory) error {
				if gc.Slug == "" {
					gc.Slug = generateSlug(gc.Name)
				}
				return nil
			},
		},
		"gallery-items": &crud[models.GalleryItem]{
			ordering:  models.GalleryItemOrdering,
			preloads:  []string{"Category", "Tags"},
			orderable: true,
			prepare: func(db *gorm.DB, i *models.GalleryItem) error {
				return categoryExists(db, &models.GalleryCategory{}, i.CategoryID)
			},
			tagField: "tags",
			setTags:  tags.SetGalleryItemTags,
		},
		"testimonials": &crud[models.Testimonial]{
			ordering:  models.TestimonialOrdering,
			toggles:   []string{"featured"},
			orderable: true,
			defaults:  func(t *models.Testimonial) { t.Rating = 5 },
		},
		"social-links": &crud[models.SocialLink]{
			ordering:  models.SocialLinkOrdering,
			toggles:   []string{"active"},
			orderable: true,
			defaults:  func(l *models.SocialLink) { l.Active = true },
		},
		"timeline-items": &crud[models.TimelineItem]{
			ordering:  models.TimelineItemOrdering,
			orderable: true,
		},
		"settings": settingsResource{},
	}
}

func categoryExists(db *gorm.DB, model any, id uint) error {
	var n int64
	if err := db.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("category %d does not exist: %w", id, errs.ErrInvalid)
	}
	return nil
}

func bind(c *gin.Context, obj any) error {
	if err := c.ShouldBindWith(obj, binding.Form); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInvalid, err)
	}
	return nil
}

// normalizeCheckboxes collapses each boolean field to one value so form
// binding accepts HTML checkboxes. A checkbox posts "on", and a hidden
// "false" input next to it lets an unchecked box clear the field. Fields
// missing from the form are left alone.
func normalizeCheckboxes(c *gin.Context, fields []string) error {
	if err := c.Request.ParseForm(); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInvalid, err)
	}
	for _, field := range fields {
		values, ok := c.Request.PostForm[field]
		if !ok {
			continue
		}
		checked := false
		for _, v := range values {
			if v == "on" {
				checked = true
				continue
			}
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%w: %s is not a boolean: %q", errs.ErrInvalid, field, v)
			}
			checked = checked || b
		}
		value := []string{strconv.FormatBool(checked)}
		c.Request.PostForm[field] = value
		c.Request.Form[field] = value
	}
	return nil
}

// crud administers one gorm model. Boolean fields listed in toggles can be
// flipped from the list view, and orderable models accept a new sort order.
// Updates are partial: fields absent from the form keep their values.
type crud[T any] struct {
	ordering  string
	preloads  []string
	toggles   []string
	orderable bool

	// defaults fills a new record before the form is bound onto it.
	defaults func(*T)
	// prepare runs after binding, before the record is written.
	prepare func(*gorm.DB, *T) error

	// tagField names the comma separated form field replacing the tag set.
	tagField string
	setTags  func(*gorm.DB, *T, []string) error
}

func (r *crud[T]) query(db *gorm.DB) *gorm.DB {
	for _, p := range r.preloads {
		db = db.Preload(p)
	}
	return db
}

func (r *crud[T]) find(db *gorm.DB, id uint) (*T, error) {
	item := new(T)
	if err := r.query(db).First(item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("id %d: %w", id, errs.ErrNotFound)
		}
		return nil, err
	}
	return item, nil
}

func (r *crud[T]) list(db *gorm.DB) (any, error) {
	var items []T
	if err := r.query(db).Order(r.ordering).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *crud[T]) get(db *gorm.DB, id uint) (any, error) {
	return r.find(db, id)
}

func (r *crud[T]) create(c *gin.Context, db *gorm.DB) (any, error) {
	item := new(T)
	if r.defaults != nil {
		r.defaults(item)
	}
	if err := normalizeCheckboxes(c, r.toggles); err != nil {
		return nil, err
	}
	if err := bind(c, item); err != nil {
		return nil, err
	}
	if r.prepare != nil {
		if err := r.prepare(db, item); err != nil {
			return nil, err
		}
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(item).Error; err != nil {
			return err
		}
		if r.setTags == nil {
			return nil
		}
		return r.setTags(tx, item, tags.Parse(c.PostForm(r.tagField)))
	})
	if err != nil {
		return nil, err
	}

	// the primary key is set now, so First reloads this record
	if err := r.query(db).First(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *crud[T]) update(c *gin.Context, db *gorm.DB, id uint) (any, error) {
	item, err := r.find(db, id)
	if err != nil {
		return nil, err
	}
	if err := normalizeCheckboxes(c, r.toggles); err != nil {
		return nil, err
	}
	if err := bind(c, item); err != nil {
		return nil, err
	}
	if r.prepare != nil {
		if err := r.prepare(db, item); err != nil {
			return nil, err
		}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("created_at", clause.Associations).Save(item).Error; err != nil {
			return err
		}
		if r.setTags == nil {
			return nil
		}
		// an absent field keeps the current tags, an empty one clears them
		raw, ok := c.GetPostForm(r.tagField)
		if !ok {
			return nil
		}
		return r.setTags(tx, item, tags.Parse(raw))
	})
	if err != nil {
		return nil, err
	}
	return r.find(db, id)
}

func (r *crud[T]) toggle(db *gorm.DB, id uint, field string) (any, error) {
	if !slices.Contains(r.toggles, field) {
		return nil, fmt.Errorf("field %q cannot be toggled: %w", field, errs.ErrInvalid)
	}
	item, err := r.find(db, id)
	if err != nil {
		return nil, err
	}
	if err := db.Model(item).Update(field, gorm.Expr("NOT "+field)).Error; err != nil {
		return nil, err
	}
	return r.find(db, id)
}

func (r *crud[T]) setOrder(db *gorm.DB, id uint, order int) (any, error) {
	if !r.orderable {
		return nil, fmt.Errorf("records have no order: %w", errs.ErrInvalid)
	}
	item, err := r.find(db, id)
	if err != nil {
		return nil, err
	}
	if err := db.Model(item).Update("sort_order", order).Error; err != nil {
		return nil, err
	}
	return r.find(db, id)
}

// remove loads the record first so its delete hooks see the id and cascade.
func (r *crud[T]) remove(db *gorm.DB, id uint) error {
	item, err := r.find(db, id)
	if err != nil {
		return err
	}
	return db.Delete(item).Error
}

func (r *crud[T]) count(db *gorm.DB) (int64, error) {
	var n int64
	err := db.Model(new(T)).Count(&n).Error
	return n, err
}

// settingsResource administers the single SiteSettings row. It can be
// created only while no row exists and can never be deleted.
type settingsResource struct{}

func (settingsResource) find(db *gorm.DB, id uint) (*models.SiteSettings, error) {
	var s models.SiteSettings
	if err := db.First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("settings %d: %w", id, errs.ErrNotFound)
		}
		return nil, err
	}
	return &s, nil
}

func (settingsResource) list(db *gorm.DB) (any, error) {
	var rows []models.SiteSettings
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r settingsResource) get(db *gorm.DB, id uint) (any, error) {
	return r.find(db, id)
}

func (settingsResource) create(c *gin.Context, db *gorm.DB) (any, error) {
	s := settings.Defaults()
	if err := bind(c, &s); err != nil {
		return nil, err
	}
	if err := settings.Create(db, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r settingsResource) update(c *gin.Context, db *gorm.DB, id uint) (any, error) {
	s, err := r.find(db, id)
	if err != nil {
		return nil, err
	}
	if err := bind(c, s); err != nil {
		return nil, err
	}
	if err := settings.Update(db, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (settingsResource) toggle(*gorm.DB, uint, string) (any, error) {
	return nil, fmt.Errorf("settings have no toggles: %w", errs.ErrInvalid)
}

func (settingsResource) setOrder(*gorm.DB, uint, int) (any, error) {
	return nil, fmt.Errorf("settings have no order: %w", errs.ErrInvalid)
}

func (settingsResource) remove(*gorm.DB, uint) error {
	return fmt.Errorf("delete site settings: %w", errForbidden)
}

func (settingsResource) count(db *gorm.DB) (int64, error) {
	var n int64
	err := db.Model(&models.SiteSettings{}).Count(&n).Error
	return n, err
}

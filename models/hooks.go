package models

import (
	"fmt"
	"unicode/utf8"

	"gorm.io/gorm"

	"portfolio/errs"
)

func (s *Skill) BeforeSave(tx *gorm.DB) error {
	if s.Category == "" {
		s.Category = SkillOther
	}
	for _, c := range SkillCategories {
		if c == s.Category {
			return nil
		}
	}
	return fmt.Errorf("skill category %q: %w", s.Category, errs.ErrInvalid)
}

func (t *Testimonial) BeforeSave(tx *gorm.DB) error {
	if t.Rating < 1 || t.Rating > 5 {
		return fmt.Errorf("testimonial rating %d outside 1..5: %w", t.Rating, errs.ErrInvalid)
	}
	return nil
}

func (p *BlogPost) BeforeSave(tx *gorm.DB) error {
	if n := utf8.RuneCountInString(p.Excerpt); n > ExcerptMaxLength {
		return fmt.Errorf("blog post excerpt has %d characters, max %d: %w", n, ExcerptMaxLength, errs.ErrInvalid)
	}
	return nil
}

func (t *TimelineItem) BeforeSave(tx *gorm.DB) error {
	if _, ok := timelineLabels[t.Type]; !ok {
		return fmt.Errorf("timeline type %q: %w", t.Type, errs.ErrInvalid)
	}
	if t.EndDate != nil && t.EndDate.IsZero() {
		t.EndDate = nil
	}
	return nil
}

// BeforeCreate pins the settings row to its fixed key, so a second insert
// fails on the primary key no matter how it is attempted.
func (s *SiteSettings) BeforeCreate(tx *gorm.DB) error {
	s.ID = SettingsID
	return nil
}

func (p *Project) BeforeDelete(tx *gorm.DB) error {
	if p.ID == 0 {
		return nil
	}
	return tx.Exec("DELETE FROM project_tags WHERE project_id = ?", p.ID).Error
}

func (p *BlogPost) BeforeDelete(tx *gorm.DB) error {
	if p.ID == 0 {
		return nil
	}
	return tx.Exec("DELETE FROM blog_post_tags WHERE blog_post_id = ?", p.ID).Error
}

func (i *GalleryItem) BeforeDelete(tx *gorm.DB) error {
	if i.ID == 0 {
		return nil
	}
	return tx.Exec("DELETE FROM gallery_item_tags WHERE gallery_item_id = ?", i.ID).Error
}

// BeforeDelete removes the category's posts. The category must be loaded:
// deleting by condition alone would orphan them.
func (c *BlogCategory) BeforeDelete(tx *gorm.DB) error {
	if c.ID == 0 {
		return fmt.Errorf("delete blog category without a loaded id: %w", errs.ErrInvalid)
	}

	var ids []uint
	if err := tx.Model(&BlogPost{}).Where("category_id = ?", c.ID).Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Exec("DELETE FROM blog_post_tags WHERE blog_post_id IN ?", ids).Error; err != nil {
		return err
	}
	return tx.Exec("DELETE FROM blog_posts WHERE id IN ?", ids).Error
}

func (c *GalleryCategory) BeforeDelete(tx *gorm.DB) error {
	if c.ID == 0 {
		return fmt.Errorf("delete gallery category without a loaded id: %w", errs.ErrInvalid)
	}

	var ids []uint
	if err := tx.Model(&GalleryItem{}).Where("category_id = ?", c.ID).Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Exec("DELETE FROM gallery_item_tags WHERE gallery_item_id IN ?", ids).Error; err != nil {
		return err
	}
	return tx.Exec("DELETE FROM gallery_items WHERE id IN ?", ids).Error
}

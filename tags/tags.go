package tags

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"portfolio/errs"
	"portfolio/models"
)

// Kind names one association table between tags and a taggable entity.
type Kind struct {
	Table       string
	OwnerColumn string
	Field       string // association field on the owner model
}

var (
	Projects     = Kind{Table: "project_tags", OwnerColumn: "project_id", Field: "Technologies"}
	BlogPosts    = Kind{Table: "blog_post_tags", OwnerColumn: "blog_post_id", Field: "Tags"}
	GalleryItems = Kind{Table: "gallery_item_tags", OwnerColumn: "gallery_item_id", Field: "Tags"}
)

// Parse splits a comma separated tag list, trimming blanks and repeated names.
func Parse(s string) []string {
	var names []string
	seen := map[string]bool{}
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// Resolve returns a tag record per name, creating the missing ones.
func Resolve(db *gorm.DB, names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		tag, err := upsert(db, name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func upsert(db *gorm.DB, name string) (models.Tag, error) {
	var tag models.Tag
	err := db.Where("name = ?", name).First(&tag).Error
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return tag, err
	}

	tag = models.Tag{Name: name}
	if err := db.Create(&tag).Error; err != nil {
		if !errs.IsUniqueViolation(err) {
			return tag, err
		}
		// created concurrently
		tag = models.Tag{}
		if err := db.Where("name = ?", name).First(&tag).Error; err != nil {
			return tag, err
		}
	}
	return tag, nil
}

func set(db *gorm.DB, owner interface{}, kind Kind, names []string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		resolved, err := Resolve(tx, names)
		if err != nil {
			return err
		}
		assoc := tx.Model(owner).Association(kind.Field)
		if len(resolved) == 0 {
			return assoc.Clear()
		}
		return assoc.Replace(resolved)
	})
}

// SetProjectTechnologies replaces the project's technology tags. Detached
// tags are kept.
func SetProjectTechnologies(db *gorm.DB, project *models.Project, names []string) error {
	return set(db, project, Projects, names)
}

func SetBlogPostTags(db *gorm.DB, post *models.BlogPost, names []string) error {
	return set(db, post, BlogPosts, names)
}

func SetGalleryItemTags(db *gorm.DB, item *models.GalleryItem, names []string) error {
	return set(db, item, GalleryItems, names)
}

// Names returns the tag names attached to one owner, ordered by name.
func Names(db *gorm.DB, kind Kind, ownerID uint) ([]string, error) {
	var names []string
	err := db.Table("tags").
		Joins("INNER JOIN "+kind.Table+" ON "+kind.Table+".tag_id = tags.id").
		Where(kind.Table+"."+kind.OwnerColumn+" = ?", ownerID).
		Order("tags.name ASC").
		Pluck("tags.name", &names).Error
	return names, err
}

func ProjectNames(db *gorm.DB, id uint) ([]string, error) {
	return Names(db, Projects, id)
}

func BlogPostNames(db *gorm.DB, id uint) ([]string, error) {
	return Names(db, BlogPosts, id)
}

func GalleryItemNames(db *gorm.DB, id uint) ([]string, error) {
	return Names(db, GalleryItems, id)
}

// MatchingOwners is a subquery selecting ids of owners that have a tag whose
// name contains term, ignoring case.
func MatchingOwners(db *gorm.DB, kind Kind, term string) *gorm.DB {
	return db.Table(kind.Table).
		Select(kind.Table+"."+kind.OwnerColumn).
		Joins("INNER JOIN tags ON tags.id = "+kind.Table+".tag_id").
		Where("LOWER(tags.name) LIKE ? ESCAPE '\\'", ContainsPattern(term))
}

// AllNames returns the distinct names of tags attached to any owner of kind,
// sorted ascending.
func AllNames(db *gorm.DB, kind Kind) ([]string, error) {
	var names []string
	err := db.Table("tags").
		Distinct("tags.name").
		Joins("INNER JOIN "+kind.Table+" ON "+kind.Table+".tag_id = tags.id").
		Order("tags.name ASC").
		Pluck("tags.name", &names).Error
	return names, err
}

// ContainsPattern builds a lower-cased LIKE pattern matching term anywhere,
// with LIKE wildcards in term escaped.
func ContainsPattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(term)) + "%"
}

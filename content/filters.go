package content

import (
	"strings"

	"gorm.io/gorm"

	"portfolio/tags"
)

const like = "LIKE ? ESCAPE '\\'"

// ProjectFilter holds the query parameters of the projects listing.
type ProjectFilter struct {
	Search string
	Tech   string
	Page   string
}

// Scope narrows a projects query to the filter. Blank values are ignored.
func (f ProjectFilter) Scope(db *gorm.DB) *gorm.DB {
	if term := strings.TrimSpace(f.Search); term != "" {
		pattern := tags.ContainsPattern(term)
		db = db.Where(
			"(LOWER(projects.title) "+like+" OR LOWER(projects.description) "+like+" OR projects.id IN (?))",
			pattern, pattern, tags.MatchingOwners(fresh(db), tags.Projects, term),
		)
	}
	if tech := strings.TrimSpace(f.Tech); tech != "" {
		db = db.Where("projects.id IN (?)", tags.MatchingOwners(fresh(db), tags.Projects, tech))
	}
	return db
}

// BlogFilter holds the query parameters of the blog listing.
type BlogFilter struct {
	Search   string
	Category string
	Page     string
}

// Scope narrows a blog posts query to the filter. Publication state is not
// part of the filter.
func (f BlogFilter) Scope(db *gorm.DB) *gorm.DB {
	if slug := strings.TrimSpace(f.Category); slug != "" {
		db = db.Where("blog_posts.category_id IN (?)",
			fresh(db).Table("blog_categories").Select("id").Where("slug = ?", slug))
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		pattern := tags.ContainsPattern(term)
		db = db.Where(
			"(LOWER(blog_posts.title) "+like+" OR LOWER(blog_posts.excerpt) "+like+
				" OR LOWER(blog_posts.content) "+like+" OR blog_posts.id IN (?))",
			pattern, pattern, pattern, tags.MatchingOwners(fresh(db), tags.BlogPosts, term),
		)
	}
	return db
}

// GalleryFilter holds the query parameters of the gallery.
type GalleryFilter struct {
	Search   string
	Category string
	Page     string
}

func (f GalleryFilter) Scope(db *gorm.DB) *gorm.DB {
	if slug := strings.TrimSpace(f.Category); slug != "" {
		db = db.Where("gallery_items.category_id IN (?)",
			fresh(db).Table("gallery_categories").Select("id").Where("slug = ?", slug))
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		pattern := tags.ContainsPattern(term)
		db = db.Where(
			"(LOWER(gallery_items.title) "+like+" OR LOWER(gallery_items.description) "+like+" OR gallery_items.id IN (?))",
			pattern, pattern, tags.MatchingOwners(fresh(db), tags.GalleryItems, term),
		)
	}
	return db
}

// fresh returns a session without the conditions already on db, for building
// subqueries.
func fresh(db *gorm.DB) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true})
}

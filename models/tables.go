package models

import (
	"fmt"
	"time"
)

// Default orderings, applied by every listing query and the admin lists.
const (
	SkillOrdering           = "sort_order ASC, name ASC"
	AchievementOrdering     = "sort_order ASC, title ASC"
	ProjectOrdering         = "projects.sort_order ASC, projects.created_at DESC"
	BlogCategoryOrdering    = "name ASC"
	BlogPostOrdering        = "blog_posts.created_at DESC"
	GalleryCategoryOrdering = "name ASC"
	GalleryItemOrdering     = "gallery_items.sort_order ASC, gallery_items.created_at DESC"
	TestimonialOrdering     = "sort_order ASC, created_at DESC"
	SocialLinkOrdering      = "sort_order ASC, name ASC"
	TimelineItemOrdering    = "sort_order ASC, start_date DESC"
)

const (
	SkillFrontend = "frontend"
	SkillBackend  = "backend"
	SkillDatabase = "database"
	SkillTools    = "tools"
	SkillOther    = "other"
)

var SkillCategories = []string{SkillFrontend, SkillBackend, SkillDatabase, SkillTools, SkillOther}

type Skill struct {
	ID       uint   `gorm:"primaryKey" json:"id" form:"-"`
	Name     string `gorm:"size:100;not null" json:"name" form:"name" binding:"required,max=100"`
	Level    int    `gorm:"not null;default:0" json:"level" form:"level"` // 0-100, not enforced
	Icon     string `gorm:"size:10" json:"icon" form:"icon"`              // emoji
	XP       int    `gorm:"not null;default:0" json:"xp" form:"xp"`
	Category string `gorm:"size:50;not null;default:'other'" json:"category" form:"category" binding:"omitempty,oneof=frontend backend database tools other"`
	Order    int    `gorm:"column:sort_order;not null;default:0" json:"order" form:"order"`
}

func (s Skill) String() string {
	return fmt.Sprintf("%s (%d%%)", s.Name, s.Level)
}

type Achievement struct {
	ID          uint   `gorm:"primaryKey" json:"id" form:"-"`
	Title       string `gorm:"size:200;not null" json:"title" form:"title" binding:"required,max=200"`
	Description string `gorm:"type:text" json:"description" form:"description"`
	IconName    string `gorm:"size:50" json:"icon_name" form:"icon_name"` // lucide icon name
	XP          int    `gorm:"not null;default:0" json:"xp" form:"xp"`
	Unlocked    bool   `gorm:"not null" json:"unlocked" form:"unlocked"`
	Order       int    `gorm:"column:sort_order;not null;default:0" json:"order" form:"order"`
}

func (a Achievement) String() string {
	return a.Title
}

type Project struct {
	ID                  uint      `gorm:"primaryKey" json:"id" form:"-"`
	Title               string    `gorm:"size:200;not null" json:"title" form:"title" binding:"required,max=200"`
	Description         string    `gorm:"type:text;not null" json:"description" form:"description"`
	DetailedDescription string    `gorm:"type:text" json:"detailed_description" form:"detailed_description"` // markdown
	Image               string    `gorm:"size:255" json:"image" form:"image"`
	VideoPreview        *string   `gorm:"size:255" json:"video_preview,omitempty" form:"video_preview"`
	GithubURL           string    `gorm:"size:255" json:"github_url" form:"github_url" binding:"omitempty,url"`
	LiveURL             string    `gorm:"size:255" json:"live_url" form:"live_url" binding:"omitempty,url"`
	Technologies        []Tag     `gorm:"many2many:project_tags" json:"technologies,omitempty" form:"-"`
	Featured            bool      `gorm:"not null;index" json:"featured" form:"featured"`
	Order               int       `gorm:"column:sort_order;not null;default:0" json:"order" form:"order"`
	CreatedAt           time.Time `json:"created_at" form:"-"`
	UpdatedAt           time.Time `json:"updated_at" form:"-"`
}

func (p Project) String() string {
	return p.Title
}

// TechnologyNames returns the names of the preloaded technology tags.
func (p Project) TechnologyNames() []string {
	return tagNames(p.Technologies)
}

type BlogCategory struct {
	ID          uint       `gorm:"primaryKey" json:"id" form:"-"`
	Name        string     `gorm:"size:100;not null" json:"name" form:"name" binding:"required,max=100"`
	Slug        string     `gorm:"size:50;not null;uniqueIndex" json:"slug" form:"slug"`
	Description string     `gorm:"type:text" json:"description" form:"description"`
	Posts       []BlogPost `gorm:"foreignKey:CategoryID" json:"-" form:"-"`
}

func (BlogCategory) TableName() string {
	return "blog_categories"
}

func (c BlogCategory) String() string {
	return c.Name
}

const ExcerptMaxLength = 300

type BlogPost struct {
	ID         uint         `gorm:"primaryKey" json:"id" form:"-"`
	Title      string       `gorm:"size:200;not null" json:"title" form:"title" binding:"required,max=200"`
	Slug       string       `gorm:"size:50;not null;uniqueIndex" json:"slug" form:"slug"`
	Excerpt    string       `gorm:"type:text" json:"excerpt" form:"excerpt" binding:"max=300"`
	Content    string       `gorm:"type:text" json:"content" form:"content"` // markdown
	Image      string       `gorm:"size:255" json:"image" form:"image"`
	CategoryID uint         `gorm:"not null;index" json:"category_id" form:"category_id" binding:"required"`
	Category   BlogCategory `gorm:"foreignKey:CategoryID" json:"category" form:"-" binding:"-"`
	Tags       []Tag        `gorm:"many2many:blog_post_tags" json:"tags,omitempty" form:"-"`
	Featured   bool         `gorm:"not null;index" json:"featured" form:"featured"`
	Published  bool         `gorm:"not null;index" json:"published" form:"published"`
	ReadTime   int          `gorm:"not null;default:5" json:"read_time" form:"read_time"` // minutes
	CreatedAt  time.Time    `gorm:"index" json:"created_at" form:"-"`
	UpdatedAt  time.Time    `json:"updated_at" form:"-"`
}

func (p BlogPost) String() string {
	return p.Title
}

func (p BlogPost) TagNames() []string {
	return tagNames(p.Tags)
}

type GalleryCategory struct {
	ID          uint          `gorm:"primaryKey" json:"id" form:"-"`
	Name        string        `gorm:"size:100;not null" json:"name" form:"name" binding:"required,max=100"`
	Slug        string        `gorm:"size:50;not null;uniqueIndex" json:"slug" form:"slug"`
	Description string        `gorm:"type:text" json:"description" form:"description"`
	Items       []GalleryItem `gorm:"foreignKey:CategoryID" json:"-" form:"-"`
}

func (GalleryCategory) TableName() string {
	return "gallery_categories"
}

func (c GalleryCategory) String() string {
	return c.Name
}

type GalleryItem struct {
	ID          uint            `gorm:"primaryKey" json:"id" form:"-"`
	Title       string          `gorm:"size:200;not null" json:"title" form:"title" binding:"required,max=200"`
	Description string          `gorm:"type:text" json:"description" form:"description"`
	Image       string          `gorm:"size:255" json:"image" form:"image"`
	CategoryID  uint            `gorm:"not null;index" json:"category_id" form:"category_id" binding:"required"`
	Category    GalleryCategory `gorm:"foreignKey:CategoryID" json:"category" form:"-" binding:"-"`
	Tags        []Tag           `gorm:"many2many:gallery_item_tags" json:"tags,omitempty" form:"-"`
	Order       int             `gorm:"column:sort_order;not null;default:0" json:"order" form:"order"`
	CreatedAt   time.Time       `json:"created_at" form:"-"`
}

func (i GalleryItem) String() string {
	return i.Title
}

func (i GalleryItem) TagNames() []string {
	return tagNames(i.Tags)
}

type Testimonial struct {
	ID        uint      `gorm:"primaryKey" json:"id" form:"-"`
	Name      string    `gorm:"size:100;not null" json:"name" form:"name" binding:"required,max=100"`
	Role      string    `gorm:"size:100" json:"role" form:"role"`
	Company   string    `gorm:"size:100" json:"company" form:"company"`
	Avatar    string    `gorm:"size:255" json:"avatar" form:"avatar"`
	Text      string    `gorm:"type:text" json:"text" form:"text"`
	Rating    int       `gorm:"not null;default:5" json:"rating" form:"rating,default=5" binding:"min=1,max=5"`
	Project   string    `gorm:"size:200" json:"project" form:"project"`
	Featured  bool      `gorm:"not null;index" json:"featured" form:"featured"`
	Order     int       `gorm:"column:sort_order;not null;default:0" json:"order" form:"order"`
	CreatedAt time.Time `json:"created_at" form:"-"`
}

func (t Testimonial) String() string {
	return fmt.Sprintf("%s - %s", t.Name, t.Company)
}

type SocialLink struct {
	ID       uint   `gorm:"primaryKey" json:"id" form:"-"`
	Name     string `gorm:"size:50;not null" json:"name" form:"name" binding:"required,max=50"`
	URL      string `gorm:"size:255;not null" json:"url" form:"url" binding:"required,url"`
	IconName string `gorm:"size:50" json:"icon_name" form:"icon_name"`
	Order    int    `gorm:"column:sort_order;not null;default:0" json:"order" form:"order"`
	Active   bool   `gorm:"not null;index" json:"active" form:"active"`
}

func (l SocialLink) String() string {
	return l.Name
}

// SettingsID is the fixed primary key of the only SiteSettings row.
const SettingsID = 1

type SiteSettings struct {
	ID              uint   `gorm:"primaryKey;autoIncrement:false" json:"id" form:"-"`
	SiteTitle       string `gorm:"size:200;not null" json:"site_title" form:"site_title" binding:"max=200"`
	SiteDescription string `gorm:"type:text" json:"site_description" form:"site_description"`
	HeroTitle       string `gorm:"size:200" json:"hero_title" form:"hero_title" binding:"max=200"`
	HeroSubtitle    string `gorm:"type:text" json:"hero_subtitle" form:"hero_subtitle"`
	Email           string `gorm:"size:254" json:"email" form:"email" binding:"omitempty,email"`
	Phone           string `gorm:"size:20" json:"phone" form:"phone" binding:"max=20"`
	Location        string `gorm:"size:100" json:"location" form:"location" binding:"max=100"`
	ResumeURL       string `gorm:"size:255" json:"resume_url" form:"resume_url" binding:"omitempty,url"`
}

func (SiteSettings) TableName() string {
	return "site_settings"
}

func (SiteSettings) String() string {
	return "Site Settings"
}

const (
	TimelineStudy    = "study"
	TimelineTraining = "training"
	TimelineWork     = "work"
)

var timelineLabels = map[string]string{
	TimelineStudy:    "Study",
	TimelineTraining: "Training",
	TimelineWork:     "Work",
}

type TimelineItem struct {
	ID          uint       `gorm:"primaryKey" json:"id" form:"-"`
	Title       string     `gorm:"size:200;not null" json:"title" form:"title" binding:"required,max=200"`
	Type        string     `gorm:"size:20;not null" json:"type" form:"type" binding:"required,oneof=study training work"`
	Institution string     `gorm:"size:200" json:"institution" form:"institution"`
	StartDate   time.Time  `gorm:"type:date;not null" json:"start_date" form:"start_date" time_format:"2006-01-02" binding:"required"`
	EndDate     *time.Time `gorm:"type:date" json:"end_date,omitempty" form:"end_date" time_format:"2006-01-02"`
	Description string     `gorm:"type:text" json:"description" form:"description"`
	Order       int        `gorm:"column:sort_order;not null;default:0" json:"order" form:"order"`
}

// TypeLabel is the display name of the timeline type.
func (t TimelineItem) TypeLabel() string {
	if label, ok := timelineLabels[t.Type]; ok {
		return label
	}
	return t.Type
}

func (t TimelineItem) String() string {
	return fmt.Sprintf("%s at %s (%s)", t.Title, t.Institution, t.TypeLabel())
}

// Tag names are unique and compared case-sensitively.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null;uniqueIndex" json:"name"`
}

func (t Tag) String() string {
	return t.Name
}

func tagNames(tags []Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}

// All lists every table managed by the content database, in migration order.
func All() []interface{} {
	return []interface{}{
		&Tag{},
		&Skill{},
		&Achievement{},
		&Project{},
		&BlogCategory{},
		&BlogPost{},
		&GalleryCategory{},
		&GalleryItem{},
		&Testimonial{},
		&SocialLink{},
		&SiteSettings{},
		&TimelineItem{},
	}
}

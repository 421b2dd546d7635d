package analytics

import (
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	KindProject  = "project"
	KindBlogPost = "blog_post"

	VisitorCookie = "portfolio_visitor_id"
	visitThrottle = 30 * time.Minute
	visitorMaxAge = 60 * 60 * 24 * 365 * 2 // 2 years
	dayFormat     = "2006-01-02"
)

// Visit is one page view of a project or blog post detail page
type Visit struct {
	ID        uint      `gorm:"primaryKey"`
	Kind      string    `gorm:"size:20;not null;index:idx_visit_object"`
	ObjectID  uint      `gorm:"not null;index:idx_visit_object"`
	VisitorID string    `gorm:"size:36;not null;index"`
	IP        string    `gorm:"size:45;not null"`
	Browser   *string   `gorm:"size:30"`
	Language  *string   `gorm:"size:35"`
	CreatedAt time.Time `gorm:"index"`
}

// AnalyticsModule records visits in its own database. A nil module tracks
// nothing and reports no visits.
type AnalyticsModule struct {
	db      *gorm.DB
	pending sync.WaitGroup
}

func NewAnalyticsModule(db *gorm.DB) *AnalyticsModule {
	if db == nil {
		log.Info().Msg("analytics db not configured, analytics disabled")
		return nil
	}

	if err := db.AutoMigrate(&Visit{}); err != nil {
		log.Error().Err(err).Msg("error migrating visits table, analytics disabled")
		return nil
	}

	log.Info().Msg("analytics module initialized")
	return &AnalyticsModule{db: db}
}

// TrackVisit records a visit of kind/objectID. Repeated views by the same
// visitor within 30 minutes count once.
func (a *AnalyticsModule) TrackVisit(c *gin.Context, kind string, objectID uint) {
	if a == nil || a.db == nil {
		return
	}

	visitorID := a.visitorID(c)

	var recent Visit
	err := a.db.Where("visitor_id = ? AND kind = ? AND object_id = ? AND created_at > ?",
		visitorID, kind, objectID, time.Now().UTC().Add(-visitThrottle)).
		First(&recent).Error
	if err == nil {
		return
	}

	visit := Visit{
		Kind:      kind,
		ObjectID:  objectID,
		VisitorID: visitorID,
		IP:        clientIP(c),
		Browser:   extractBrowser(c.Request.UserAgent()),
		Language:  extractLanguage(c.GetHeader("Accept-Language")),
		CreatedAt: time.Now().UTC(),
	}

	a.pending.Add(1)
	go func() {
		defer a.pending.Done()
		if err := a.db.Create(&visit).Error; err != nil {
			log.Error().Err(err).Str("kind", kind).Uint("object_id", objectID).Msg("error saving visit")
		}
	}()
}

// Wait blocks until visits being saved in the background are stored.
func (a *AnalyticsModule) Wait() {
	if a == nil {
		return
	}
	a.pending.Wait()
}

func (a *AnalyticsModule) visitorID(c *gin.Context) string {
	if id, err := c.Cookie(VisitorCookie); err == nil && id != "" {
		return id
	}

	id := uuid.NewString()
	c.SetCookie(VisitorCookie, id, visitorMaxAge, "/", "", false, true)
	return id
}

// clientIP returns the client address, preferring proxy headers
func clientIP(c *gin.Context) string {
	if ip := c.GetHeader("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	if ip := c.GetHeader("X-Real-IP"); ip != "" {
		return ip
	}
	if ip := c.GetHeader("CF-Connecting-IP"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

func extractBrowser(userAgent string) *string {
	if userAgent == "" {
		return nil
	}

	ua := strings.ToLower(userAgent)
	var browser string

	// most specific first, Edge and Opera also claim Chrome
	switch {
	case strings.Contains(ua, "edg"):
		browser = "Edge"
	case strings.Contains(ua, "opera") || strings.Contains(ua, "opr"):
		browser = "Opera"
	case strings.Contains(ua, "chrome"):
		browser = "Chrome"
	case strings.Contains(ua, "safari"):
		browser = "Safari"
	case strings.Contains(ua, "firefox"):
		browser = "Firefox"
	case strings.Contains(ua, "msie") || strings.Contains(ua, "trident"):
		browser = "Internet Explorer"
	default:
		browser = "Other"
	}
	return &browser
}

// extractLanguage returns the preferred language of an Accept-Language
// header such as "en-US,en;q=0.9".
func extractLanguage(acceptLang string) *string {
	if acceptLang == "" {
		return nil
	}
	lang := strings.TrimSpace(strings.Split(acceptLang, ",")[0])
	lang = strings.Split(lang, ";")[0]
	if lang == "" {
		return nil
	}
	return &lang
}

type DayVisits struct {
	Date  string
	Count int64
}

type ObjectVisits struct {
	ObjectID uint
	Count    int64
}

// VisitsByDay returns one entry per day for the last days days, oldest first,
// including days without visits.
func (a *AnalyticsModule) VisitsByDay(days int) []DayVisits {
	if a == nil || a.db == nil || days <= 0 {
		return []DayVisits{}
	}

	now := time.Now().UTC()
	start := now.AddDate(0, 0, -(days - 1)).Truncate(24 * time.Hour)

	var results []DayVisits
	err := a.db.Model(&Visit{}).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Where("created_at >= ?", start).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&results).Error
	if err != nil {
		log.Error().Err(err).Msg("error loading visits by day")
	}

	counts := make(map[string]int64, len(results))
	for _, r := range results {
		counts[r.Date] = r.Count
	}

	dayVisits := make([]DayVisits, days)
	for i := range dayVisits {
		date := now.AddDate(0, 0, -(days - 1 - i)).Format(dayFormat)
		dayVisits[i] = DayVisits{Date: date, Count: counts[date]}
	}
	return dayVisits
}

// TopObjects returns the most visited objects of kind in the last days days
func (a *AnalyticsModule) TopObjects(kind string, days, limit int) []ObjectVisits {
	if a == nil || a.db == nil {
		return []ObjectVisits{}
	}

	var results []ObjectVisits
	err := a.db.Model(&Visit{}).
		Select("object_id, COUNT(*) as count").
		Where("kind = ? AND created_at >= ?", kind, time.Now().UTC().AddDate(0, 0, -days)).
		Group("object_id").
		Order("count DESC, object_id ASC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		log.Error().Err(err).Str("kind", kind).Msg("error loading top objects")
	}
	return results
}

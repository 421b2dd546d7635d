package site

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq"`
	Priority   float64 `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

func (s *SiteModule) sitemap(c *gin.Context) {
	sm, err := s.repo.Sitemap()
	if err != nil {
		s.pages.Fail(c, err)
		return
	}

	set := urlSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	add := func(path, lastMod, freq string, priority float64) {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        s.domain + path,
			LastMod:    lastMod,
			ChangeFreq: freq,
			Priority:   priority,
		})
	}

	add("/", "", "weekly", 1.0)
	add("/about/", "", "monthly", 0.8)
	add("/projects/", "", "weekly", 0.8)
	add("/blogs/", "", "daily", 0.8)
	add("/gallery/", "", "monthly", 0.6)
	add("/testimonials/", "", "monthly", 0.5)

	for _, project := range sm.Projects {
		add(fmt.Sprintf("/projects/%d/", project.ID), project.UpdatedAt.Format(time.RFC3339), "monthly", 0.7)
	}
	for _, category := range sm.Categories {
		add("/blog/category/"+category.Slug+"/", "", "weekly", 0.5)
	}
	for _, post := range sm.Posts {
		add("/blog/"+post.Slug+"/", post.UpdatedAt.Format(time.RFC3339), "monthly", 0.6)
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		s.pages.Fail(c, err)
		return
	}

	c.Data(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), out...))
}

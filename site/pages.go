package site

import (
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"portfolio/common"
	"portfolio/content"
)

// Pages renders public page templates with the context every page shares:
// the site settings and the active social links.
type Pages struct {
	repo *content.Repository
}

func NewPages(repo *content.Repository) *Pages {
	return &Pages{repo: repo}
}

func (p *Pages) context(data gin.H) (gin.H, error) {
	base, err := p.repo.Base()
	if err != nil {
		return nil, err
	}
	h := gin.H{
		"settings":     base.Settings,
		"social_links": base.SocialLinks,
	}
	for k, v := range data {
		h[k] = v
	}
	return h, nil
}

func (p *Pages) Render(c *gin.Context, name string, data gin.H) {
	h, err := p.context(data)
	if err != nil {
		common.RenderError(c, err, nil)
		return
	}
	c.HTML(http.StatusOK, name, h)
}

// Fail renders the not found or error page for err.
func (p *Pages) Fail(c *gin.Context, err error) {
	h, ctxErr := p.context(nil)
	if ctxErr != nil {
		// the page still renders, without settings or social links
		log.Warn().Err(ctxErr).Str("path", c.Request.URL.Path).Msg("error loading page context")
	}
	common.RenderError(c, err, h)
}

// FilterQuery encodes the non-empty filter values for pagination links.
func FilterQuery(pairs ...string) template.URL {
	values := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		if v := strings.TrimSpace(pairs[i+1]); v != "" {
			values.Set(pairs[i], v)
		}
	}
	return template.URL(values.Encode())
}

package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"portfolio/errs"
)

// RenderError answers a failed page request: not found errors get the 404
// page, anything else is logged and gets the error page.
func RenderError(c *gin.Context, err error, data gin.H) {
	if data == nil {
		data = gin.H{}
	}

	if errs.IsNotFound(err) {
		c.HTML(http.StatusNotFound, "not_found.html", data)
		return
	}

	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("error rendering page")
	_ = c.Error(err)
	c.HTML(http.StatusInternalServerError, "error.html", data)
}

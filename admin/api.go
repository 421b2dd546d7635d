package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"portfolio/errs"
)

func (a *AdminModule) resource(c *gin.Context) (resource, bool) {
	r, ok := a.resources[c.Param("resource")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown resource " + c.Param("resource")})
		return nil, false
	}
	return r, true
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// respondError maps store and validation errors onto status codes.
func (a *AdminModule) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errs.IsNotFound(err):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrSettingsExists), errors.Is(err, errForbidden):
		status = http.StatusForbidden
	case errors.Is(err, errs.ErrInvalid):
		status = http.StatusBadRequest
	case errs.IsUniqueViolation(err):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		log.Error().Err(err).
			Str("resource", c.Param("resource")).
			Str("method", c.Request.Method).
			Msg("admin request failed")
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (a *AdminModule) list(c *gin.Context) {
	r, ok := a.resource(c)
	if !ok {
		return
	}

	items, err := r.list(a.db)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (a *AdminModule) get(c *gin.Context) {
	r, ok := a.resource(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	item, err := r.get(a.db, id)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (a *AdminModule) create(c *gin.Context) {
	r, ok := a.resource(c)
	if !ok {
		return
	}

	item, err := r.create(c, a.db)
	if err != nil {
		a.respondError(c, err)
		return
	}

	a.clearCache()
	log.Info().Str("resource", c.Param("resource")).Msg("admin created record")
	c.JSON(http.StatusCreated, item)
}

func (a *AdminModule) update(c *gin.Context) {
	r, ok := a.resource(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	item, err := r.update(c, a.db, id)
	if err != nil {
		a.respondError(c, err)
		return
	}

	a.clearCache()
	log.Info().Str("resource", c.Param("resource")).Uint("id", id).Msg("admin updated record")
	c.JSON(http.StatusOK, item)
}

func (a *AdminModule) toggle(c *gin.Context) {
	r, ok := a.resource(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	item, err := r.toggle(a.db, id, c.Param("field"))
	if err != nil {
		a.respondError(c, err)
		return
	}

	a.clearCache()
	c.JSON(http.StatusOK, item)
}

func (a *AdminModule) setOrder(c *gin.Context) {
	r, ok := a.resource(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	order, err := strconv.Atoi(c.PostForm("order"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order must be an integer"})
		return
	}

	item, err := r.setOrder(a.db, id, order)
	if err != nil {
		a.respondError(c, err)
		return
	}

	a.clearCache()
	c.JSON(http.StatusOK, item)
}

func (a *AdminModule) remove(c *gin.Context) {
	r, ok := a.resource(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := r.remove(a.db, id); err != nil {
		a.respondError(c, err)
		return
	}

	a.clearCache()
	log.Info().Str("resource", c.Param("resource")).Uint("id", id).Msg("admin deleted record")
	c.Status(http.StatusNoContent)
}

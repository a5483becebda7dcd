package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// GET /species
func (h *Handler) GetSpecies(c *gin.Context) {
	if h.species != nil {
		if cached, ok := h.species.Get(speciesCacheKey); ok {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	rows, err := h.store.ListSpecies(c.Request.Context())
	if err != nil {
		h.log.Error("Database error while fetching species", zap.Error(err))
		h.abort(c, err)
		return
	}
	if h.species != nil {
		h.species.Set(speciesCacheKey, rows, cache.DefaultExpiration)
	}
	c.JSON(http.StatusOK, rows)
}

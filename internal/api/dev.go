package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// DatabaseStats reports the number of records per collection.
func (h *Handler) DatabaseStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	stats, err := h.Store.Stats(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// PurgeDatabase empties the store. It is refused in production.
func (h *Handler) PurgeDatabase(c *gin.Context) {
	if h.Production {
		c.JSON(http.StatusForbidden, gin.H{"error": "Purge is only available in development"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	if err := h.Store.Purge(ctx); err != nil {
		writeError(c, err)
		return
	}
	stats, err := h.Store.Stats(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	h.Log.Warn("Database purged")
	c.JSON(http.StatusOK, gin.H{"message": "Database purged successfully", "stats": stats})
}

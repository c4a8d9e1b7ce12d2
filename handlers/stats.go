package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/granth1406/HawkEye/middleware"
	"github.com/granth1406/HawkEye/reports"
)

type StatsHandler struct {
	Reports *reports.Store
}

// Stats returns the authenticated user's aggregated scan counts, weekly
// chart buckets and last ten scans.
func (h *StatsHandler) Stats(c *gin.Context) {
	scans, err := h.Reports.AllByUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}
	c.JSON(http.StatusOK, reports.ComputeUserStats(scans, time.Now()))
}

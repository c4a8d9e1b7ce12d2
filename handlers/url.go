package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/granth1406/HawkEye/middleware"
	"github.com/granth1406/HawkEye/scanner"
	"github.com/granth1406/HawkEye/virustotal"
)

type URLHandler struct {
	Scanner *scanner.URLScanner
}

func (h *URLHandler) Scan(c *gin.Context) {
	var input struct {
		URL string `json:"url"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL is required"})
		return
	}

	result, err := h.Scanner.Scan(c.Request.Context(), middleware.UserID(c), input.URL)
	if err != nil {
		switch {
		case errors.Is(err, scanner.ErrInvalidURL):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "URL is incorrect. Please provide a valid URL (e.g., https://example.com)",
			})
		case errors.Is(err, virustotal.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please try again later."})
		case errors.Is(err, virustotal.ErrTimeout):
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Request timed out. Please try again."})
		default:
			log.Printf("[SCAN] url scan error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error scanning URL"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           result.Report.ID,
		"verdict":      result.Report.Verdict,
		"safeBrowsing": result.SafeBrowsing,
		"virusTotal":   result.VirusTotal,
	})
}

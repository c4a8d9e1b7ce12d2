package handlers

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/granth1406/HawkEye/middleware"
	"github.com/granth1406/HawkEye/scanner"
	"github.com/granth1406/HawkEye/virustotal"
)

type ScanHandler struct {
	Scanner   *scanner.FileScanner
	UploadDir string
}

// ScanFile accepts a multipart upload and blocks until the scan reaches a
// terminal verdict. The poll loop runs on a background context: once a
// scan is submitted upstream it runs to completion server-side whether or
// not the client sticks around for the answer.
func (h *ScanHandler) ScanFile(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "File scan failed"})
		return
	}
	tmpPath := filepath.Join(h.UploadDir, uuid.NewString())
	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "File scan failed"})
		return
	}

	report, err := h.Scanner.Scan(context.Background(), middleware.UserID(c), tmpPath, file.Filename)
	if err != nil {
		switch {
		case errors.Is(err, virustotal.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please try again later."})
		case errors.Is(err, virustotal.ErrTimeout):
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Request timed out. Please try again."})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "File scan failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      report.ID,
		"verdict": report.Verdict,
		"result":  report.Result,
		"hash":    report.Hash,
	})
}

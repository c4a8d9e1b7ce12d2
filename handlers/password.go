package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/granth1406/HawkEye/hibp"
	"github.com/granth1406/HawkEye/middleware"
	"github.com/granth1406/HawkEye/models"
	"github.com/granth1406/HawkEye/reports"
	"github.com/granth1406/HawkEye/scanner"
)

const maxBulkPasswords = 50

type PasswordHandler struct {
	HIBP    *hibp.Client
	Reports *reports.Store
}

// Check looks a single password up against the Pwned Passwords range API.
func (h *PasswordHandler) Check(c *gin.Context) {
	var input struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No password provided"})
		return
	}

	ctx := c.Request.Context()

	count, err := h.HIBP.CheckPassword(ctx, input.Password)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	breached := count > 0
	verdict := models.VerdictSafe
	if breached {
		verdict = models.VerdictMalicious
	}
	severity := scanner.SeverityForBreachCount(count)

	h.saveReport(ctx, middleware.UserID(c), "password-check", verdict, gin.H{
		"breachCount":      count,
		"severity":         severity,
		"passwordStrength": passwordStrength(input.Password),
	})

	message := "This password has not been found in any known data breaches."
	if breached {
		message = fmt.Sprintf("This password has been found in %d data breaches. Do not use it!", count)
	}

	c.JSON(http.StatusOK, gin.H{
		"breached":        breached,
		"breachCount":     count,
		"severity":        severity,
		"verdict":         verdict,
		"message":         message,
		"recommendations": recommendations(input.Password, count),
	})
}

// CheckMultiple checks up to 50 passwords in one request. Per-item
// failures degrade to an error entry for that row; the response carries a
// failed count so callers can spot partial failure without scanning every
// row.
func (h *PasswordHandler) CheckMultiple(c *gin.Context) {
	var input struct {
		Passwords []string `json:"passwords"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || len(input.Passwords) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No passwords provided"})
		return
	}
	if len(input.Passwords) > maxBulkPasswords {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Maximum %d passwords per request", maxBulkPasswords)})
		return
	}

	ctx := c.Request.Context()

	type item struct {
		Password    string `json:"password"`
		Breached    bool   `json:"breached"`
		BreachCount int    `json:"breachCount"`
		Severity    string `json:"severity,omitempty"`
		Verdict     string `json:"verdict"`
		Error       string `json:"error,omitempty"`
	}

	var (
		results       []item
		breachedCount int
		safeCount     int
		failedCount   int
	)
	for _, pw := range input.Passwords {
		count, err := h.HIBP.CheckPassword(ctx, pw)
		if err != nil {
			failedCount++
			results = append(results, item{
				Password: maskPassword(pw),
				Verdict:  models.VerdictUnknown,
				Error:    "Failed to check password",
			})
			continue
		}
		it := item{
			Password:    maskPassword(pw),
			Breached:    count > 0,
			BreachCount: count,
			Severity:    scanner.SeverityForBreachCount(count),
			Verdict:     models.VerdictSafe,
		}
		if it.Breached {
			it.Verdict = models.VerdictMalicious
			breachedCount++
		} else {
			safeCount++
		}
		results = append(results, it)
	}

	verdict := models.VerdictSafe
	if breachedCount > 0 {
		verdict = models.VerdictMalicious
	}
	h.saveReport(ctx, middleware.UserID(c), "bulk-password-check", verdict, gin.H{
		"total":    len(input.Passwords),
		"breached": breachedCount,
		"safe":     safeCount,
		"failed":   failedCount,
		"results":  results,
	})

	c.JSON(http.StatusOK, gin.H{
		"total":    len(input.Passwords),
		"breached": breachedCount,
		"safe":     safeCount,
		"failed":   failedCount,
		"results":  results,
	})
}

// BreachDetails points at the upstream database; per-breach detail needs a
// premium HIBP subscription.
func (h *PasswordHandler) BreachDetails(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Breach details API requires premium HaveIBeenPwned account",
		"info":    "You can check individual breaches at https://haveibeenpwned.com/PwnedWebsites",
	})
}

func (h *PasswordHandler) saveReport(ctx context.Context, userID, target, verdict string, result gin.H) {
	report := &models.ScanReport{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      models.ScanTypePassword,
		Target:    target, // fixed placeholder, never the password itself
		Result:    map[string]interface{}(result),
		Verdict:   verdict,
		CreatedAt: time.Now(),
	}
	if err := h.Reports.Save(ctx, report); err != nil {
		log.Printf("[HIBP] failed to save password report: %v", err)
	}
}

func passwordStrength(password string) string {
	score := 0
	if len(password) >= 8 {
		score++
	}
	if len(password) >= 12 {
		score++
	}
	if len(password) >= 16 {
		score++
	}
	if strings.ContainsFunc(password, func(r rune) bool { return r >= 'a' && r <= 'z' }) {
		score++
	}
	if strings.ContainsFunc(password, func(r rune) bool { return r >= 'A' && r <= 'Z' }) {
		score++
	}
	if strings.ContainsFunc(password, func(r rune) bool { return r >= '0' && r <= '9' }) {
		score++
	}
	if strings.ContainsFunc(password, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9')
	}) {
		score++
	}

	switch {
	case score <= 2:
		return "weak"
	case score <= 4:
		return "medium"
	case score <= 6:
		return "strong"
	}
	return "very-strong"
}

func recommendations(password string, breachCount int) []string {
	var recs []string

	if breachCount > 0 {
		recs = append(recs,
			"Do not use this password - it has been compromised",
			"Create a new unique password for each account")
	}

	if passwordStrength(password) == "weak" {
		recs = append(recs,
			"Use a longer password (12+ characters recommended)",
			"Include uppercase, lowercase, numbers, and symbols")
	}

	if !strings.ContainsFunc(password, func(r rune) bool { return r >= 'A' && r <= 'Z' }) {
		recs = append(recs, "Add uppercase letters (A-Z)")
	}
	if !strings.ContainsFunc(password, func(r rune) bool { return r >= '0' && r <= '9' }) {
		recs = append(recs, "Add numbers (0-9)")
	}
	if !strings.ContainsFunc(password, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9')
	}) {
		recs = append(recs, "Add special characters (!@#$%^&*)")
	}

	if len(recs) == 0 {
		recs = append(recs, "This is a strong password that has not been compromised")
	}
	return recs
}

// maskPassword keeps only the first and last character so bulk responses
// never echo a checkable secret.
func maskPassword(password string) string {
	if len(password) <= 3 {
		return strings.Repeat("*", len(password))
	}
	return password[:1] + strings.Repeat("*", len(password)-2) + password[len(password)-1:]
}

// respondUpstreamError maps client sentinel errors onto distinct statuses
// with user-actionable messages.
func respondUpstreamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, hibp.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please try again later."})
	case errors.Is(err, hibp.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable. Please try again later."})
	case errors.Is(err, hibp.ErrTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Request timed out. Please try again."})
	case errors.Is(err, hibp.ErrUpstream):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Breach check service returned an error. Please try again."})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Password check failed"})
	}
}

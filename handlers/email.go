package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/granth1406/HawkEye/hibp"
	"github.com/granth1406/HawkEye/middleware"
	"github.com/granth1406/HawkEye/models"
	"github.com/granth1406/HawkEye/reports"
)

type EmailHandler struct {
	HIBP    *hibp.Client
	Reports *reports.Store
}

// CheckBreach looks an email address up in known breaches. Validation runs
// first, in a fixed rule order, so no malformed address ever reaches the
// upstream API.
func (h *EmailHandler) CheckBreach(c *gin.Context) {
	var input struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email address is required"})
		return
	}

	email := strings.TrimSpace(input.Email)
	if err := hibp.ValidateEmail(email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	breaches, err := h.HIBP.CheckAccount(ctx, email)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	breached := len(breaches) > 0
	type breachInfo struct {
		Name        string `json:"name"`
		Date        string `json:"date"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	infos := make([]breachInfo, 0, len(breaches))
	names := make([]string, 0, len(breaches))
	for _, b := range breaches {
		date := b.BreachDate
		if date == "" {
			date = "Unknown"
		}
		title := b.Title
		if title == "" {
			title = b.Name
		}
		infos = append(infos, breachInfo{
			Name:        b.Name,
			Date:        date,
			Title:       title,
			Description: b.Description,
		})
		names = append(names, b.Name)
	}

	verdict := models.VerdictSafe
	if breached {
		verdict = models.VerdictSuspicious
	}

	report := &models.ScanReport{
		ID:      uuid.NewString(),
		UserID:  middleware.UserID(c),
		Type:    models.ScanTypeEmail,
		Target:  email,
		Verdict: verdict,
		Result: map[string]interface{}{
			"breached":    breached,
			"breachCount": len(breaches),
			"breaches":    names,
		},
		CreatedAt: time.Now(),
	}
	if err := h.Reports.Save(ctx, report); err != nil {
		// History write failure does not invalidate the result the user
		// asked for.
		log.Printf("[HIBP] failed to save email report: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"email":       email,
		"breached":    breached,
		"breachCount": len(breaches),
		"breaches":    infos,
	})
}

// History returns the user's last 20 email checks.
func (h *EmailHandler) History(c *gin.Context) {
	scans, err := h.Reports.ListByUser(c.Request.Context(), middleware.UserID(c), models.ScanTypeEmail, 20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}

	now := time.Now()
	type entry struct {
		ID          string    `json:"id"`
		Email       string    `json:"email"`
		Breached    bool      `json:"breached"`
		BreachCount int       `json:"breachCount"`
		ScanDate    time.Time `json:"scanDate"`
		TimeAgo     string    `json:"timeAgo"`
	}
	history := make([]entry, 0, len(scans))
	for _, s := range scans {
		e := entry{
			ID:       s.ID,
			Email:    s.Target,
			Breached: s.Verdict == models.VerdictSuspicious,
			ScanDate: s.CreatedAt,
			TimeAgo:  reports.TimeAgo(s.CreatedAt, now),
		}
		e.BreachCount = intField(s.Result, "breachCount")
		history = append(history, e)
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}

// intField digs a numeric field out of a stored result payload. The BSON
// decoder hands documents back as primitive.D, so both shapes are handled.
func intField(result interface{}, key string) int {
	var raw interface{}
	switch v := result.(type) {
	case map[string]interface{}:
		raw = v[key]
	case primitive.M:
		raw = v[key]
	case primitive.D:
		for _, elem := range v {
			if elem.Key == key {
				raw = elem.Value
				break
			}
		}
	}

	switch n := raw.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

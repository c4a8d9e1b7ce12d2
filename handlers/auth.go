package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"

	"github.com/granth1406/HawkEye/models"
	"github.com/granth1406/HawkEye/utils"
)

type AuthHandler struct {
	Users          *mongo.Collection
	JWTSecret      string
	GoogleClientID string
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	ctx := c.Request.Context()

	count, err := h.Users.CountDocuments(ctx, bson.M{"email": input.Email})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	user := models.User{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		AuthProvider: models.AuthProviderLocal,
		CreatedAt:    time.Now(),
	}
	if _, err := h.Users.InsertOne(ctx, user); err != nil {
		log.Printf("[AUTH] insert user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User registered successfully", "id": user.ID})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	var user models.User
	err := h.Users.FindOne(c.Request.Context(), bson.M{"email": input.Email}).Decode(&user)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
		return
	}

	if user.PasswordHash == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "This account uses Google login. Please use Google Sign-In."})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
		return
	}

	// 2FA users get a challenge instead of a token; the session is only
	// issued once the code checks out.
	if user.TwoFactorEnabled {
		c.JSON(http.StatusOK, gin.H{
			"requiresTwoFactor": true,
			"userId":            user.ID,
			"message":           "Please enter your 2FA code",
		})
		return
	}

	h.issueToken(c, &user)
}

// GoogleLogin verifies a Google ID token, creating the account on first
// sign-in or linking it to an existing local account with the same email.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var input struct {
		GoogleToken string `json:"googleToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Google token is required"})
		return
	}

	ctx := c.Request.Context()

	payload, err := idtoken.Validate(ctx, input.GoogleToken, h.GoogleClientID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Google authentication failed"})
		return
	}

	googleID := payload.Subject
	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Google authentication failed"})
		return
	}
	if name == "" {
		name = email
	}

	var user models.User
	err = h.Users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	switch {
	case err == mongo.ErrNoDocuments:
		user = models.User{
			ID:           uuid.NewString(),
			Name:         name,
			Email:        email,
			GoogleID:     googleID,
			AuthProvider: models.AuthProviderGoogle,
			CreatedAt:    time.Now(),
		}
		if _, err := h.Users.InsertOne(ctx, user); err != nil {
			log.Printf("[AUTH] insert google user: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Google authentication failed"})
			return
		}
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Google authentication failed"})
		return
	case user.GoogleID == "":
		// Link the Google identity to the existing local account.
		if err := h.updateUser(ctx, user.ID, bson.M{
			"googleId":     googleID,
			"authProvider": models.AuthProviderGoogle,
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Google authentication failed"})
			return
		}
	}

	h.issueToken(c, &user)
}

func (h *AuthHandler) issueToken(c *gin.Context, user *models.User) {
	token, err := utils.GenerateJWT(h.JWTSecret, user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  gin.H{"id": user.ID, "name": user.Name, "email": user.Email},
	})
}

func (h *AuthHandler) updateUser(ctx context.Context, id string, set bson.M) error {
	_, err := h.Users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

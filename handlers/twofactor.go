package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/granth1406/HawkEye/middleware"
	"github.com/granth1406/HawkEye/models"
	"github.com/granth1406/HawkEye/twofactor"
	"github.com/granth1406/HawkEye/utils"
)

type TwoFactorHandler struct {
	Users         *mongo.Collection
	Pending       *twofactor.PendingStore
	JWTSecret     string
	EncryptionKey string
}

// Setup starts 2FA enrollment: a fresh secret and QR code, held in the
// pending store until Verify proves the user scanned it. 2FA only becomes
// active after verification.
func (h *TwoFactorHandler) Setup(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}
	if user.TwoFactorEnabled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "2FA is already enabled for this account"})
		return
	}

	setup, err := twofactor.GenerateSetup(user.Email)
	if err != nil {
		log.Printf("[2FA] setup generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to initiate 2FA"})
		return
	}

	h.Pending.Put(user.ID, setup)

	c.JSON(http.StatusOK, gin.H{
		"qrCode":      setup.QRCode,
		"backupCodes": setup.BackupCodes,
		"message":     "Scan the QR code with your authenticator app, then verify the code to enable 2FA",
	})
}

// Verify completes enrollment by checking a code against the pending
// secret, which must be the exact secret whose QR code was shown.
func (h *TwoFactorHandler) Verify(c *gin.Context) {
	var input struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Verification code is required"})
		return
	}

	user, ok := h.loadUser(c)
	if !ok {
		return
	}
	if user.TwoFactorEnabled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "2FA is already enabled"})
		return
	}

	setup := h.Pending.Take(user.ID)
	if setup == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No pending 2FA setup. Start setup again."})
		return
	}

	if !twofactor.VerifyToken(setup.Secret, input.Token) {
		// Put it back so a mistyped code doesn't force a new QR scan.
		h.Pending.Put(user.ID, setup)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid verification code"})
		return
	}

	encryptedSecret, err := utils.Encrypt(h.EncryptionKey, setup.Secret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify 2FA"})
		return
	}
	encryptedCodes := make([]string, 0, len(setup.BackupCodes))
	for _, code := range setup.BackupCodes {
		enc, err := utils.Encrypt(h.EncryptionKey, code)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify 2FA"})
			return
		}
		encryptedCodes = append(encryptedCodes, enc)
	}

	_, err = h.Users.UpdateOne(c.Request.Context(), bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"twoFactorSecret":      encryptedSecret,
		"twoFactorBackupCodes": encryptedCodes,
		"twoFactorEnabled":     true,
		"twoFactorVerified":    true,
	}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify 2FA"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "2FA enabled successfully",
		"backupCodes": setup.BackupCodes,
	})
}

// Disable turns 2FA off, gated on the account password.
func (h *TwoFactorHandler) Disable(c *gin.Context) {
	var input struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password is required to disable 2FA"})
		return
	}

	user, ok := h.loadUser(c)
	if !ok {
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
		return
	}

	_, err := h.Users.UpdateOne(c.Request.Context(), bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"twoFactorEnabled":     false,
		"twoFactorSecret":      "",
		"twoFactorBackupCodes": []string{},
		"twoFactorVerified":    false,
	}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to disable 2FA"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "2FA disabled successfully"})
}

// VerifyLogin finishes a 2FA-challenged login. It is public: the caller
// has a user id from the login step, not a session token yet.
func (h *TwoFactorHandler) VerifyLogin(c *gin.Context) {
	var input struct {
		UserID        string `json:"userId"`
		Token         string `json:"token"`
		UseBackupCode bool   `json:"useBackupCode"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.UserID == "" || input.Token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID and token are required"})
		return
	}

	ctx := c.Request.Context()

	var user models.User
	if err := h.Users.FindOne(ctx, bson.M{"_id": input.UserID}).Decode(&user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if !user.TwoFactorEnabled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "2FA is not enabled for this user"})
		return
	}

	var valid bool
	if input.UseBackupCode {
		codes := make([]string, 0, len(user.TwoFactorBackupCodes))
		for _, enc := range user.TwoFactorBackupCodes {
			code, err := utils.Decrypt(h.EncryptionKey, enc)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify 2FA"})
				return
			}
			codes = append(codes, code)
		}

		var remaining []string
		remaining, valid = twofactor.ConsumeBackupCode(codes, input.Token)
		if valid {
			encrypted := make([]string, 0, len(remaining))
			for _, code := range remaining {
				enc, err := utils.Encrypt(h.EncryptionKey, code)
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify 2FA"})
					return
				}
				encrypted = append(encrypted, enc)
			}
			if _, err := h.Users.UpdateOne(ctx, bson.M{"_id": user.ID},
				bson.M{"$set": bson.M{"twoFactorBackupCodes": encrypted}}); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify 2FA"})
				return
			}
		}
	} else {
		secret, err := utils.Decrypt(h.EncryptionKey, user.TwoFactorSecret)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify 2FA"})
			return
		}
		valid = twofactor.VerifyToken(secret, input.Token)
	}

	if !valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid verification code"})
		return
	}

	token, err := utils.GenerateJWT(h.JWTSecret, user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify 2FA"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"user":    gin.H{"id": user.ID, "name": user.Name, "email": user.Email},
		"message": "2FA verification successful",
	})
}

// Status reports whether 2FA is active and how many backup codes remain.
func (h *TwoFactorHandler) Status(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"twoFactorEnabled":     user.TwoFactorEnabled,
		"twoFactorVerified":    user.TwoFactorVerified,
		"backupCodesRemaining": len(user.TwoFactorBackupCodes),
	})
}

// RegenerateBackupCodes replaces all backup codes, gated on the password.
func (h *TwoFactorHandler) RegenerateBackupCodes(c *gin.Context) {
	var input struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password is required"})
		return
	}

	user, ok := h.loadUser(c)
	if !ok {
		return
	}
	if !user.TwoFactorEnabled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "2FA is not enabled"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
		return
	}

	codes := twofactor.GenerateBackupCodes()
	encrypted := make([]string, 0, len(codes))
	for _, code := range codes {
		enc, err := utils.Encrypt(h.EncryptionKey, code)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to regenerate backup codes"})
			return
		}
		encrypted = append(encrypted, enc)
	}

	_, err := h.Users.UpdateOne(c.Request.Context(), bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"twoFactorBackupCodes": encrypted}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to regenerate backup codes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"backupCodes": codes,
		"message":     "Backup codes regenerated successfully",
	})
}

func (h *TwoFactorHandler) loadUser(c *gin.Context) (*models.User, bool) {
	var user models.User
	err := h.Users.FindOne(c.Request.Context(), bson.M{"_id": middleware.UserID(c)}).Decode(&user)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return nil, false
	}
	return &user, true
}

package cmd

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/granth1406/HawkEye/config"
	"github.com/granth1406/HawkEye/database"
	"github.com/granth1406/HawkEye/handlers"
	"github.com/granth1406/HawkEye/hibp"
	"github.com/granth1406/HawkEye/middleware"
	"github.com/granth1406/HawkEye/reports"
	"github.com/granth1406/HawkEye/safebrowsing"
	"github.com/granth1406/HawkEye/scanner"
	"github.com/granth1406/HawkEye/scheduler"
	"github.com/granth1406/HawkEye/twofactor"
	"github.com/granth1406/HawkEye/virustotal"
)

const requestsPerMinute = 60

var sweepInterval time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HawkEye API server",
	Run: func(cmd *cobra.Command, args []string) {
		serve()
	},
}

func init() {
	serveCmd.Flags().DurationVar(&sweepInterval, "sweep-interval", 20*time.Minute,
		"how often to sweep the uploads directory for leftover files")
	rootCmd.AddCommand(serveCmd)
}

func serve() {
	cfg := config.Load()
	cfg.ValidateForServe()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := database.Connect(ctx, cfg.MongoURI); err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer database.Disconnect(context.Background())

	store := reports.NewStore(database.Scans())
	vt := virustotal.NewClient(cfg.VTAPIKey)
	sb := safebrowsing.NewClient(cfg.GoogleAPIKey)
	breach := hibp.NewClient(cfg.HIBPAPIKey)

	fileScanner := scanner.NewFileScanner(vt, store)
	urlScanner := scanner.NewURLScanner(sb, vt, store)

	sweeper := &scheduler.Sweeper{Dir: cfg.UploadDir, Scanner: fileScanner}
	go sweeper.Run(context.Background(), sweepInterval)

	auth := &handlers.AuthHandler{
		Users:          database.Users(),
		JWTSecret:      cfg.JWTSecret,
		GoogleClientID: cfg.GoogleClientID,
	}
	password := &handlers.PasswordHandler{HIBP: breach, Reports: store}
	email := &handlers.EmailHandler{HIBP: breach, Reports: store}
	scan := &handlers.ScanHandler{Scanner: fileScanner, UploadDir: cfg.UploadDir}
	urls := &handlers.URLHandler{Scanner: urlScanner}
	stats := &handlers.StatsHandler{Reports: store}
	twoFA := &handlers.TwoFactorHandler{
		Users:         database.Users(),
		Pending:       twofactor.NewPendingStore(),
		JWTSecret:     cfg.JWTSecret,
		EncryptionKey: cfg.EncryptionKey,
	}

	r := gin.Default()
	api := r.Group("/api", middleware.RateLimit(requestsPerMinute))

	public := api.Group("/")
	{
		public.POST("/auth/register", auth.Register)
		public.POST("/auth/login", auth.Login)
		public.POST("/auth/google", auth.GoogleLogin)
		public.POST("/2fa/verify-login", twoFA.VerifyLogin)
	}

	protected := api.Group("/", middleware.Auth(cfg.JWTSecret))
	{
		protected.POST("/auth/check-email-breach", email.CheckBreach)
		protected.GET("/auth/email-history", email.History)
		protected.GET("/auth/stats", stats.Stats)

		protected.POST("/password/check", password.Check)
		protected.POST("/password/check-multiple", password.CheckMultiple)
		protected.GET("/password/breach-details", password.BreachDetails)

		protected.POST("/scan/file", scan.ScanFile)
		protected.POST("/url/scan", urls.Scan)

		protected.POST("/2fa/setup", twoFA.Setup)
		protected.POST("/2fa/verify", twoFA.Verify)
		protected.POST("/2fa/disable", twoFA.Disable)
		protected.GET("/2fa/status", twoFA.Status)
		protected.POST("/2fa/regenerate-backup-codes", twoFA.RegenerateBackupCodes)
	}

	log.Printf("HawkEye server running on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

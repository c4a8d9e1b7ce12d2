package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/granth1406/HawkEye/config"
	"github.com/granth1406/HawkEye/database"
	"github.com/granth1406/HawkEye/models"
	"github.com/granth1406/HawkEye/reports"
	"github.com/granth1406/HawkEye/scanner"
	"github.com/granth1406/HawkEye/virustotal"
)

var (
	scanDir    string
	reportsOut string
	keepFiles  bool
)

var scanUploadsCmd = &cobra.Command{
	Use:   "scan-uploads",
	Short: "Scan every file in the uploads directory",
	Long: `Scans every file in the uploads directory against VirusTotal,
using the same cache-then-submit-then-poll flow as the API. Results are
saved to MongoDB when MONGO_URI is set, otherwise written to a JSON file.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := scanUploads(); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	scanUploadsCmd.Flags().StringVar(&scanDir, "dir", "uploads", "directory to scan")
	scanUploadsCmd.Flags().StringVar(&reportsOut, "out", "scan_reports.json",
		"report file used when MongoDB is not configured")
	scanUploadsCmd.Flags().BoolVar(&keepFiles, "keep", true, "keep files after scanning")
	rootCmd.AddCommand(scanUploadsCmd)
}

func scanUploads() error {
	cfg := config.Load()
	if cfg.VTAPIKey == "" {
		return fmt.Errorf("VT_API_KEY is not set")
	}

	entries, err := os.ReadDir(scanDir)
	if err != nil {
		return fmt.Errorf("reading uploads directory: %w", err)
	}

	var files []os.DirEntry
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, e)
		}
	}
	if len(files) == 0 {
		fmt.Println("No files to scan.")
		return nil
	}

	ctx := context.Background()
	vt := virustotal.NewClient(cfg.VTAPIKey)

	var saver scanner.ReportSaver
	var collected []*models.ScanReport
	if cfg.MongoURI != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if _, err := database.Connect(connectCtx, cfg.MongoURI); err != nil {
			return fmt.Errorf("connecting to MongoDB: %w", err)
		}
		defer database.Disconnect(ctx)
		saver = reports.NewStore(database.Scans())
	} else {
		saver = saverFunc(func(_ context.Context, r *models.ScanReport) error {
			collected = append(collected, r)
			return nil
		})
	}

	fileScanner := scanner.NewFileScanner(vt, saver)
	fileScanner.KeepFile = keepFiles

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("scanning"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	var malicious, suspicious, clean, unknown int
	for _, entry := range files {
		path := filepath.Join(scanDir, entry.Name())

		var size string
		if info, err := entry.Info(); err == nil {
			size = humanize.Bytes(uint64(info.Size()))
		}

		report, err := fileScanner.Scan(ctx, "", path, entry.Name())
		bar.Add(1)
		if err != nil {
			color.Yellow("%-40s %8s  error: %v", entry.Name(), size, err)
			unknown++
			continue
		}

		switch report.Verdict {
		case models.VerdictMalicious:
			color.Red("%-40s %8s  MALICIOUS", entry.Name(), size)
			malicious++
		case models.VerdictSuspicious:
			color.Yellow("%-40s %8s  suspicious", entry.Name(), size)
			suspicious++
		case models.VerdictSafe:
			color.Green("%-40s %8s  clean", entry.Name(), size)
			clean++
		default:
			fmt.Printf("%-40s %8s  unknown\n", entry.Name(), size)
			unknown++
		}
	}

	fmt.Printf("\n%d scanned: %d malicious, %d suspicious, %d clean, %d unknown\n",
		len(files), malicious, suspicious, clean, unknown)

	if cfg.MongoURI == "" && len(collected) > 0 {
		data, err := json.MarshalIndent(collected, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(reportsOut, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("Reports written to %s\n", reportsOut)
	}
	return nil
}

type saverFunc func(ctx context.Context, r *models.ScanReport) error

func (f saverFunc) Save(ctx context.Context, r *models.ScanReport) error { return f(ctx, r) }

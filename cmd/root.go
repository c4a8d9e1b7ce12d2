package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hawkeye",
	Short: "HawkEye security scanner backend",
	Long: `HawkEye checks passwords and emails against known data breaches,
scans files with antivirus engines via VirusTotal, and scans URLs for
phishing and malware via Google Safe Browsing and VirusTotal.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

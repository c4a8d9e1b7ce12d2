// Package scheduler sweeps the uploads directory for files a crashed or
// interrupted request left behind. Under normal operation the orchestrator
// deletes every upload itself; the sweeper is the backstop that keeps the
// disk from filling when that didn't happen.
package scheduler

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/granth1406/HawkEye/scanner"
)

// minAge keeps the sweeper away from uploads that may still belong to an
// in-flight scan; the longest legitimate scan holds its file for about
// three minutes.
const minAge = 10 * time.Minute

type Sweeper struct {
	Dir     string
	Scanner *scanner.FileScanner
}

// Run sweeps on the given interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[SWEEP] failed to read %s: %v", s.Dir, err)
		}
		return
	}

	cutoff := time.Now().Add(-minAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(s.Dir, entry.Name())
		log.Printf("[SWEEP] scanning leftover upload %s", entry.Name())

		// Scan removes the file on every exit path, so a swept file is
		// gone afterwards whether the scan succeeded or not.
		if _, err := s.Scanner.Scan(ctx, "", path, entry.Name()); err != nil {
			log.Printf("[SWEEP] scan of %s failed: %v", entry.Name(), err)
		}
	}
}

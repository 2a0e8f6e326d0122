package patchcache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SweepStats describes scratch files removed by Sweep.
type SweepStats struct {
	Dir        string
	Removed    int
	TotalBytes int64
}

// Sweep removes *.patch files in dir last modified more than olderThan ago.
// It is meant for files left behind by runs that never reached Clear, and
// must not be pointed at a directory used by a live Cache with olderThan 0.
func Sweep(dir string, olderThan time.Duration) (SweepStats, error) {
	stats := SweepStats{Dir: dir}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return stats, fmt.Errorf("reading patch directory: %w", err)
	}
	cutoff := time.Now().Add(-olderThan)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".patch") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return stats, fmt.Errorf("removing %s: %w", e.Name(), err)
		}
		stats.Removed++
		stats.TotalBytes += info.Size()
	}
	return stats, nil
}

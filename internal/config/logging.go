package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// SetupLogFile opens a fresh timestamped log file under dir and prunes
// the oldest files beyond maxFiles. The caller owns the handle.
func SetupLogFile(dir string, maxFiles int) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("galeria-%s.log",
		time.Now().Format("2006-01-02T15-04-05")))

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	if err := pruneOldLogs(dir, maxFiles); err != nil {
		// pruning failure must not take down logging itself
		fmt.Fprintf(os.Stderr, "warning: failed to prune old logs: %v\n", err)
	}

	return f, nil
}

// pruneOldLogs deletes the oldest log files once the directory holds
// more than maxFiles. The timestamp in the name sorts chronologically,
// so a plain string sort finds the oldest.
func pruneOldLogs(dir string, maxFiles int) error {
	files, err := filepath.Glob(filepath.Join(dir, "galeria-*.log"))
	if err != nil {
		return err
	}

	if len(files) <= maxFiles {
		return nil
	}

	sort.Strings(files)
	for _, old := range files[:len(files)-maxFiles] {
		if err := os.Remove(old); err != nil {
			return fmt.Errorf("remove %s: %w", old, err)
		}
	}

	return nil
}

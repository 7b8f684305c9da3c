package logging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

const logFilePrefix = "pharmainsight-"

var overflowFileRe = regexp.MustCompile(`^pharmainsight-\d{4}-W\d{2}_(\d{2})\.log$`)

// RotatingWriter writes to one log file per ISO week. When a file reaches
// maxFileSize, writing continues in a numbered overflow file for the same
// week (pharmainsight-2025-W41_01.log, _02, ...). Files older than the
// retention period are removed once a day.
type RotatingWriter struct {
	logDir      string
	retention   time.Duration
	maxFileSize int64

	mu          sync.Mutex
	file        *os.File
	week        string
	size        int64
	cancel      context.CancelFunc
	cleanupDone chan struct{}
}

// NewRotatingWriter opens the file for the current week and starts the
// retention cleanup loop. maxFileSize <= 0 disables size based rotation.
func NewRotatingWriter(logDir string, retentionWeeks int, maxFileSize int64) (*RotatingWriter, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	rw := &RotatingWriter{
		logDir:      logDir,
		retention:   time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		maxFileSize: maxFileSize,
		cancel:      cancel,
		cleanupDone: make(chan struct{}),
	}

	rw.mu.Lock()
	err := rw.openLocked(weekKey(time.Now()), false)
	rw.mu.Unlock()
	if err != nil {
		cancel()
		return nil, err
	}

	go rw.cleanupLoop(ctx)

	return rw, nil
}

// weekKey returns the ISO week in YYYY-Www form
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// Write implements io.Writer. It rotates before writing when the week changed
// or when p would push the current file over the size limit.
func (rw *RotatingWriter) Write(p []byte) (int, error) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	week := weekKey(time.Now())
	switch {
	case week != rw.week:
		if err := rw.openLocked(week, false); err != nil {
			return 0, err
		}
	case rw.maxFileSize > 0 && rw.size > 0 && rw.size+int64(len(p)) > rw.maxFileSize:
		if err := rw.openLocked(week, true); err != nil {
			return 0, err
		}
	}

	if rw.file == nil {
		return 0, fmt.Errorf("no log file available")
	}

	n, err := rw.file.Write(p)
	rw.size += int64(n)
	return n, err
}

// openLocked switches to the right file for week. Caller must hold mu.
func (rw *RotatingWriter) openLocked(week string, overflow bool) error {
	if rw.file != nil {
		_ = rw.file.Close()
		rw.file = nil
	}

	name := rw.fileNameFor(week, overflow)
	path := filepath.Join(rw.logDir, name)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	var size int64
	if info, err := file.Stat(); err == nil {
		size = info.Size()
	}

	rw.file = file
	rw.week = week
	rw.size = size
	return nil
}

// fileNameFor picks the file to append to. On open it reuses the base weekly
// file or the latest overflow file while they have room; when the current
// file overflowed it always starts the next numbered file.
func (rw *RotatingWriter) fileNameFor(week string, overflow bool) string {
	highest, lastPath := rw.highestOverflow(week)

	if !overflow {
		base := logFilePrefix + week + ".log"
		if lastPath == "" && !rw.isFull(filepath.Join(rw.logDir, base)) {
			return base
		}
		if lastPath != "" && !rw.isFull(lastPath) {
			return filepath.Base(lastPath)
		}
	}

	return fmt.Sprintf("%s%s_%02d.log", logFilePrefix, week, highest+1)
}

func (rw *RotatingWriter) isFull(path string) bool {
	if rw.maxFileSize <= 0 {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Size() >= rw.maxFileSize
}

func (rw *RotatingWriter) highestOverflow(week string) (int, string) {
	matches, _ := filepath.Glob(filepath.Join(rw.logDir, logFilePrefix+week+"_??.log"))

	highest := 0
	var lastPath string
	for _, match := range matches {
		m := overflowFileRe.FindStringSubmatch(filepath.Base(match))
		if len(m) < 2 {
			continue
		}
		if num, err := strconv.Atoi(m[1]); err == nil && num > highest {
			highest = num
			lastPath = match
		}
	}
	return highest, lastPath
}

func (rw *RotatingWriter) cleanupLoop(ctx context.Context) {
	defer close(rw.cleanupDone)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := rw.cleanupOldLogs(time.Now()); err != nil {
				Warn("Failed to clean up old log files", "error", err)
			}
		}
	}
}

// cleanupOldLogs removes log files last modified before now minus the
// retention period and returns how many were deleted.
func (rw *RotatingWriter) cleanupOldLogs(now time.Time) (int, error) {
	entries, err := os.ReadDir(rw.logDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	cutoff := now.Add(-rw.retention)
	deleted := 0

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, logFilePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(rw.logDir, name)); err == nil {
				deleted++
			}
		}
	}

	return deleted, nil
}

// Close stops the cleanup loop and closes the current file.
func (rw *RotatingWriter) Close() error {
	rw.cancel()

	select {
	case <-rw.cleanupDone:
	case <-time.After(time.Second):
	}

	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.file == nil {
		return nil
	}
	err := rw.file.Close()
	rw.file = nil
	return err
}

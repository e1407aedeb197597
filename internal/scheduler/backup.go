package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/MrSnakeDoc/hubmarks/internal/bookmarks"
	"github.com/MrSnakeDoc/hubmarks/internal/domain"
	"github.com/MrSnakeDoc/hubmarks/internal/logger"
)

const (
	// DefaultBackupKeep is how many snapshot files are retained
	DefaultBackupKeep = 7

	backupPrefix = "hubmarks-bookmarks-"
	backupSuffix = ".json"
)

// BackupWriter periodically writes the collection snapshot to disk
type BackupWriter struct {
	store         *bookmarks.Store
	dir           string
	keep          int
	logger        logger.Logger
	interval      time.Duration
	now           func() time.Time
	stopCh        chan struct{}
	done          chan struct{}
	manualTrigger chan struct{}
}

// NewBackupWriter creates a new backup writer
func NewBackupWriter(
	store *bookmarks.Store,
	dir string,
	keep int,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *BackupWriter {
	if keep <= 0 {
		keep = DefaultBackupKeep
	}

	return &BackupWriter{
		store:         store,
		dir:           dir,
		keep:          keep,
		logger:        log,
		interval:      interval,
		now:           time.Now,
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start writes a first snapshot and begins the periodic backups
func (bw *BackupWriter) Start(ctx context.Context) error {
	if err := os.MkdirAll(bw.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create backup dir: %w", err)
	}

	// Run immediately on start
	if _, err := bw.Backup(); err != nil {
		bw.logger.Warn("initial backup failed", logger.Error(err))
	}

	ticker := time.NewTicker(bw.interval)
	go func() {
		defer close(bw.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := bw.Backup(); err != nil {
					bw.logger.Error("backup failed", logger.Error(err))
				}
			case <-bw.manualTrigger:
				bw.logger.Info("manual backup triggered")
				if _, err := bw.Backup(); err != nil {
					bw.logger.Error("backup failed", logger.Error(err))
				}
			case <-bw.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the writer and waits for its loop to exit
func (bw *BackupWriter) Stop() {
	close(bw.stopCh)
	<-bw.done
}

// Backup writes today's snapshot file, replacing one from earlier the same
// day, then prunes old files. It returns the written path.
func (bw *BackupWriter) Backup() (string, error) {
	snapshot := bw.store.Export()
	data, err := snapshot.Encode()
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	path := filepath.Join(bw.dir, domain.ExportFilename(bw.now()))
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}

	bw.logger.Info("bookmarks backup written",
		logger.String("path", path),
		logger.Int("count", len(snapshot.Bookmarks)))

	removed, err := bw.prune()
	if err != nil {
		bw.logger.Warn("failed to prune old backups", logger.Error(err))
	} else if removed > 0 {
		bw.logger.Debug("pruned old backups", logger.Int("removed", removed))
	}

	return path, nil
}

// prune deletes all but the newest keep backups. Dated names sort chronologically.
func (bw *BackupWriter) prune() (int, error) {
	entries, err := os.ReadDir(bw.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to list backup dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupSuffix) {
			continue
		}
		names = append(names, name)
	}

	if len(names) <= bw.keep {
		return 0, nil
	}

	sort.Strings(names)
	removed := 0
	for _, name := range names[:len(names)-bw.keep] {
		if err := os.Remove(filepath.Join(bw.dir, name)); err != nil {
			bw.logger.Warn("failed to remove backup",
				logger.String("file", name),
				logger.Error(err))
			continue
		}
		removed++
	}

	return removed, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".backup-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close backup: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move backup into place: %w", err)
	}
	return nil
}

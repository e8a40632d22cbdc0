package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/andri/pocs/internal/logger"
)

const backupTimestampLayout = "20060102T150405Z"

// BackupOptions controls database backups taken before destructive
// commands (restore, loaddata, flush).
type BackupOptions struct {
	Enabled   bool
	Directory string
	Now       func() time.Time
}

// Backup snapshots the open database with VACUUM INTO and returns the
// backup path, or "" when backups are disabled.
func (s *Store) Backup(ctx context.Context, opts BackupOptions) (string, error) {
	if !opts.Enabled {
		logger.Warn("Overwriting database without backup (backup disabled in config)", "path", s.path)
		return "", nil
	}

	clock := opts.Now
	if clock == nil {
		clock = time.Now
	}
	timestamp := clock().UTC().Format(backupTimestampLayout)

	var backupPath string
	switch {
	case strings.TrimSpace(opts.Directory) != "":
		if err := os.MkdirAll(opts.Directory, 0o755); err != nil {
			return "", fmt.Errorf("create backup directory %s: %w", opts.Directory, err)
		}
		base := "memory"
		if s.path != MemoryPath {
			base = strings.TrimSuffix(filepath.Base(s.path), filepath.Ext(s.path))
		}
		backupPath = filepath.Join(opts.Directory, fmt.Sprintf("pocs-%s.%s.sqlite3", base, timestamp))
	case s.path == MemoryPath:
		return "", errors.New("backup directory is required for an in-memory database")
	default:
		backupPath = fmt.Sprintf("%s.backup.%s", s.path, timestamp)
	}

	if _, err := os.Stat(backupPath); err == nil {
		return "", fmt.Errorf("backup file already exists: %s", backupPath)
	}

	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, backupPath); err != nil {
		return "", fmt.Errorf("backup database to %s: %w", backupPath, err)
	}

	logger.Info("Backed up database to "+backupPath, "path", s.path, "backup_path", backupPath)
	return backupPath, nil
}

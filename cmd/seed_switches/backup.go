package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

const backupFileExt = ".bak"

// backupDB copies an existing database file aside before seeding touches it
// and keeps at most maxBackups copies. A missing database is not an error.
func backupDB(logger *zap.SugaredLogger, dbPath string, maxBackups int) error {
	info, err := os.Stat(dbPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	logger.Debugf("existing database file size: %d bytes", info.Size())

	backupPath := fmt.Sprintf("%s.%s%s", dbPath, time.Now().Format("20060102-150405.000000000"), backupFileExt)
	if err := copyFile(logger, dbPath, backupPath); err != nil {
		return fmt.Errorf("failed to create DB backup: %w", err)
	}
	logger.Infof("existing database backed up to %s", backupPath)
	pruneOldBackups(logger, dbPath, maxBackups)
	return nil
}

func copyFile(logger *zap.SugaredLogger, src, dst string) (err error) {
	sourceFileStat, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !sourceFileStat.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}

	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func(source *os.File) {
		if err := source.Close(); err != nil {
			logger.Warnf("failed to close file %s: %v", src, err)
		}
	}(source)

	destination, err := os.Create(dst)
	if err != nil {
		return err
	}
	// a failed close can leave a truncated backup behind
	defer func(destination *os.File) {
		if cerr := destination.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", dst, cerr)
		}
	}(destination)

	_, err = destination.ReadFrom(source)
	return err
}

func pruneOldBackups(logger *zap.SugaredLogger, dbPath string, max int) {
	dir := filepath.Dir(dbPath)
	prefix := filepath.Base(dbPath) + "."
	files, err := os.ReadDir(dir)
	if err != nil {
		logger.Warnf("failed to read backup directory: %v", err)
		return
	}

	var backups []string
	for _, f := range files {
		if strings.HasPrefix(f.Name(), prefix) && strings.HasSuffix(f.Name(), backupFileExt) {
			backups = append(backups, filepath.Join(dir, f.Name()))
		}
	}

	if len(backups) <= max {
		return
	}

	// timestamped names sort oldest first
	sort.Strings(backups)
	for _, file := range backups[:len(backups)-max] {
		if err := os.Remove(file); err != nil {
			logger.Warnf("failed to remove old backup %s: %v", file, err)
		} else {
			logger.Infof("removed old backup: %s", file)
		}
	}
}

package app

import (
	"errors"
	"log/slog"
	"os"

	"golang.org/x/crypto/blake2b"
)

const fingerprintSize = blake2b.Size256

// FileStorage persists a MeetingStore as a calendar text file
type FileStorage struct {
	// Backup keeps the previous file as <path>.backup on save
	Backup bool
	Logger *slog.Logger
}

// NewFileStorage returns a storage that logs to logger (slog.Default when nil)
func NewFileStorage(backup bool, logger *slog.Logger) *FileStorage {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStorage{Backup: backup, Logger: logger}
}

// Save writes the store to path.
// The data goes to a temp file first which is renamed over path once complete.
func (fs *FileStorage) Save(s *MeetingStore, path string) error {
	tmpFile := path + TmpSuffix
	if err := writeCalendarFile(s, tmpFile); err != nil {
		return &IOError{Op: "save", Path: path, Err: err}
	}

	if fs.Backup {
		if _, err := os.Stat(path); err == nil {
			backupFile := path + BackupSuffix
			if err := os.Rename(path, backupFile); err != nil {
				fs.Logger.Warn("failed to create backup", "path", backupFile, "error", err)
			} else {
				fs.Logger.Debug("backup created", "path", backupFile)
			}
		}
	}

	if err := os.Rename(tmpFile, path); err != nil {
		_ = os.Remove(tmpFile)
		return &IOError{Op: "save", Path: path, Err: err}
	}

	s.markClean()
	fs.Logger.Info("calendar saved", "path", path, "count", s.Len())
	return nil
}

func writeCalendarFile(s *MeetingStore, filename string) (err error) {
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, FilePermissions)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(filename)
		}
	}()

	_, err = s.WriteTo(file)
	return err
}

// Load replaces the store contents with the meetings in path.
// When the file cannot be opened the store is left unchanged.
func (fs *FileStorage) Load(s *MeetingStore, path string) (LoadReport, error) {
	file, err := os.Open(path)
	if err != nil {
		return LoadReport{}, &IOError{Op: "load", Path: path, Err: err}
	}
	defer func() {
		if err := file.Close(); err != nil {
			fs.Logger.Warn("error closing calendar file", "path", path, "error", err)
		}
	}()

	report, err := s.Decode(file)
	if err != nil {
		return report, &IOError{Op: "load", Path: path, Err: err}
	}

	s.markClean()
	if report.Skipped > 0 {
		fs.Logger.Warn("skipped invalid calendar lines", "path", path, "skipped", report.Skipped)
	}
	fs.Logger.Info("calendar loaded", "path", path, "count", report.Loaded)
	return report, nil
}

// LoadIfExists loads path and treats a missing file as an empty calendar
func (fs *FileStorage) LoadIfExists(s *MeetingStore, path string) (LoadReport, error) {
	report, err := fs.Load(s, path)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		fs.Logger.Info("calendar file not found, starting empty", "path", path)
		return LoadReport{}, nil
	}
	return report, err
}

func (s *MeetingStore) fingerprint() [fingerprintSize]byte {
	return blake2b.Sum256([]byte(s.Serialize()))
}

func (s *MeetingStore) markClean() {
	s.saved = s.fingerprint()
}

// Dirty reports whether the store differs from what was last saved or loaded
func (s *MeetingStore) Dirty() bool {
	return s.fingerprint() != s.saved
}

package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klabast/wb-services/meetcal/internal/logger"
)

func newTestStorage(backup bool) *FileStorage {
	return NewFileStorage(backup, logger.Discard())
}

func TestFileStorage_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.txt")
	fs := newTestStorage(false)

	s := NewMeetingStore()
	mustAdd(t, s, "Standup", 3, 15, 9)
	mustAdd(t, s, "Retro", 3, 15, 16)
	require.NoError(t, fs.Save(s, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Standup 15.03 at 09\nRetro 15.03 at 16\n", string(data))

	_, err = os.Stat(path + TmpSuffix)
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")

	loaded := NewMeetingStore()
	report, err := fs.Load(loaded, path)
	require.NoError(t, err)
	assert.Equal(t, LoadReport{Loaded: 2}, report)
	assert.Equal(t, s.List(), loaded.List())
}

func TestFileStorage_SaveBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.txt")
	fs := newTestStorage(true)

	s := NewMeetingStore()
	mustAdd(t, s, "First", 1, 1, 1)
	require.NoError(t, fs.Save(s, path))

	_, err := os.Stat(path + BackupSuffix)
	assert.True(t, os.IsNotExist(err), "no backup before a previous file exists")

	mustAdd(t, s, "Second", 2, 2, 2)
	require.NoError(t, fs.Save(s, path))

	backup, err := os.ReadFile(path + BackupSuffix)
	require.NoError(t, err)
	assert.Equal(t, "First 01.01 at 01\n", string(backup))

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "First 01.01 at 01\nSecond 02.02 at 02\n", string(current))
}

func TestFileStorage_SaveFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "calendar.txt")
	fs := newTestStorage(false)

	s := NewMeetingStore()
	mustAdd(t, s, "A", 1, 1, 1)

	err := fs.Save(s, path)
	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "save", ioErr.Op)
	assert.Equal(t, path, ioErr.Path)
	assert.True(t, s.Dirty(), "failed save leaves changes unsaved")
}

func TestFileStorage_LoadMissingLeavesStore(t *testing.T) {
	fs := newTestStorage(false)

	s := NewMeetingStore()
	mustAdd(t, s, "Keep", 4, 4, 4)

	_, err := fs.Load(s, filepath.Join(t.TempDir(), "nope.txt"))
	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "load", ioErr.Op)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, "Keep 04.04 at 04\n", s.Serialize())
}

func TestFileStorage_LoadIfExists(t *testing.T) {
	fs := newTestStorage(false)
	s := NewMeetingStore()

	report, err := fs.LoadIfExists(s, filepath.Join(t.TempDir(), "nope.txt"))
	require.NoError(t, err)
	assert.Equal(t, LoadReport{}, report)
	assert.Equal(t, 0, s.Len())
}

func TestFileStorage_LoadSkipsBadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.txt")
	content := "Standup 15.03 at 09\ngarbage\nRetro 15.03 at 09\n"
	require.NoError(t, os.WriteFile(path, []byte(content), FilePermissions))

	s := NewMeetingStore()
	report, err := newTestStorage(false).Load(s, path)
	require.NoError(t, err)
	assert.Equal(t, LoadReport{Loaded: 1, Skipped: 2}, report)
	assert.Equal(t, "Standup 15.03 at 09\n", s.Serialize())
}

func TestMeetingStore_Dirty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.txt")
	fs := newTestStorage(false)

	s := NewMeetingStore()
	assert.False(t, s.Dirty(), "new store is clean")

	mustAdd(t, s, "A", 1, 1, 1)
	assert.True(t, s.Dirty())

	require.NoError(t, s.Delete(1, 1, 1))
	assert.False(t, s.Dirty(), "same contents as last save")

	mustAdd(t, s, "A", 1, 1, 1)
	require.NoError(t, fs.Save(s, path))
	assert.False(t, s.Dirty())

	mustAdd(t, s, "B", 2, 2, 2)
	assert.True(t, s.Dirty())

	_, err := fs.Load(s, path)
	require.NoError(t, err)
	assert.False(t, s.Dirty())
}

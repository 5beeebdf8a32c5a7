package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock makes every Backup call see a later timestamp.
func stepClock(t *testing.T) {
	t.Helper()
	base := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	calls := 0
	now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Second)
	}
	t.Cleanup(func() { now = time.Now })
}

func TestBackup_MissingFile(t *testing.T) {
	path, err := Backup(filepath.Join(t.TempDir(), ".sitesearch.yaml"))

	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestBackup_CopiesContent(t *testing.T) {
	stepClock(t)
	path := filepath.Join(t.TempDir(), ".sitesearch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("index:\n  title_boost: 3\n"), 0o644))

	backupPath, err := Backup(path)

	require.NoError(t, err)
	assert.Equal(t, path+".bak.20260102-150406.000", backupPath)
	data, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	assert.Equal(t, "index:\n  title_boost: 3\n", string(data))
}

func TestBackup_KeepsNewestOnly(t *testing.T) {
	stepClock(t)
	path := filepath.Join(t.TempDir(), ".sitesearch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))

	var made []string
	for i := 0; i < MaxBackups+2; i++ {
		b, err := Backup(path)
		require.NoError(t, err)
		made = append(made, b)
	}

	backups, err := ListBackups(path)
	require.NoError(t, err)
	require.Len(t, backups, MaxBackups)
	// newest first
	assert.Equal(t, made[len(made)-1], backups[0])
	assert.Equal(t, made[2], backups[MaxBackups-1])
}

func TestListBackups_MissingDir(t *testing.T) {
	backups, err := ListBackups(filepath.Join(t.TempDir(), "absent", "config.yaml"))

	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestRestore(t *testing.T) {
	stepClock(t)
	path := filepath.Join(t.TempDir(), ".sitesearch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))
	backupPath, err := Backup(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("new\n"), 0o644))

	require.NoError(t, Restore(backupPath, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(data))

	// the overwritten content was itself backed up
	backups, err := ListBackups(path)
	require.NoError(t, err)
	require.Len(t, backups, 2)
	latest, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(latest))
}

func TestRestore_MissingBackup(t *testing.T) {
	err := Restore(filepath.Join(t.TempDir(), "nope"), filepath.Join(t.TempDir(), "c.yaml"))
	assert.Error(t, err)
}

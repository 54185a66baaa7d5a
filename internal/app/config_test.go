package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv isolates a test from MEETCAL_* variables of the caller
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvConfig, EnvFile, EnvBackup, EnvLogLevel, EnvLogFormat,
		EnvLogFile, EnvPrompt, EnvYear, EnvLocation,
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Chdir(t.TempDir())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.Backup)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "> ", cfg.Prompt)
	assert.Equal(t, time.Now().Year(), cfg.Export.Year)
	assert.Equal(t, "Local", cfg.Export.Location)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_NoFile(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().LogLevel, cfg.LogLevel)
	assert.Empty(t, cfg.File)
}

func TestLoadConfig_YAML(t *testing.T) {
	clearEnv(t)

	content := `
file: meetings.txt
backup: false
log_level: debug
log_format: json
prompt: "cal> "
export:
  year: 2026
  location: UTC
  alarm_minutes: 10
`
	path := filepath.Join(t.TempDir(), "meetcal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "meetings.txt", cfg.File)
	assert.False(t, cfg.Backup)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "cal> ", cfg.Prompt)
	assert.Equal(t, ExportConfig{Year: 2026, Location: "UTC", AlarmMinutes: 10}, cfg.Export)
}

func TestLoadConfig_PathFromEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "meetcal.yaml")
	require.NoError(t, os.WriteFile(path, []byte("file: from-env.txt\n"), 0644))
	t.Setenv(EnvConfig, path)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "from-env.txt", cfg.File)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "meetcal.yaml")
	require.NoError(t, os.WriteFile(path, []byte("file: yaml.txt\nlog_level: error\n"), 0644))

	t.Setenv(EnvFile, "env.txt")
	t.Setenv(EnvBackup, "false")
	t.Setenv(EnvYear, "2030")
	t.Setenv(EnvPrompt, "")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "env.txt", cfg.File)
	assert.False(t, cfg.Backup)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, 2030, cfg.Export.Year)
	assert.Equal(t, "", cfg.Prompt, "an empty prompt can be set explicitly")
}

func TestLoadConfig_DotEnv(t *testing.T) {
	clearEnv(t)

	require.NoError(t, os.WriteFile(".env", []byte(EnvFile+"=dotenv.txt\n"+EnvLogLevel+"=info\n"), 0644))
	t.Cleanup(func() {
		_ = os.Unsetenv(EnvFile)
		_ = os.Unsetenv(EnvLogLevel)
	})
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "dotenv.txt", cfg.File)
	assert.Equal(t, "debug", cfg.LogLevel, "real environment wins over .env")
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		wantErr string
	}{
		{"bad yaml", "file: [unclosed", nil, "failed to parse config"},
		{"bad log format", "log_format: xml", nil, "log_format"},
		{"bad year", "export:\n  year: 0", nil, "export.year"},
		{"negative alarm", "export:\n  alarm_minutes: -5", nil, "alarm_minutes"},
		{"unknown zone", "export:\n  location: Mars/Olympus", nil, "export.location"},
		{"bad backup env", "", map[string]string{EnvBackup: "maybe"}, EnvBackup},
		{"bad year env", "", map[string]string{EnvYear: "soon"}, EnvYear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := filepath.Join(t.TempDir(), "meetcal.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))

			_, err := LoadConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestExportConfig_TimeLocation(t *testing.T) {
	loc, err := ExportConfig{}.TimeLocation()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = ExportConfig{Location: "UTC"}.TimeLocation()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

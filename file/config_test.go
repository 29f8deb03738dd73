package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FirstRunWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gluecal", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
calendar_id: work@example.com
throttle: 0s
recent_window: 5m
prefixes:
  "b ": blueberry
glue:
  keyword: stick
  title: Stick
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, "work@example.com", cfg.CalendarID)
	assert.Equal(t, Duration(0), cfg.Throttle)
	assert.Equal(t, Duration(5*time.Minute), cfg.RecentWindow)
	assert.Equal(t, map[string]string{"b ": "blueberry"}, cfg.Prefixes)
	assert.Equal(t, "stick", cfg.Glue.Keyword)
	assert.Equal(t, "Stick", cfg.Glue.Title)
	assert.Equal(t, def.Glue.Color, cfg.Glue.Color)
	assert.Equal(t, def.LockTimeout, cfg.LockTimeout)
	assert.Equal(t, def.Meeting, cfg.Meeting)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{name: "bad duration", data: "throttle: soon", want: "invalid duration"},
		{name: "title not a casing", data: "glue:\n  title: Paste", want: "glue.title"},
		{name: "long prefix", data: "prefixes:\n  \"ooo\": orange", want: "two characters"},
		{name: "unknown color", data: "meeting:\n  color: purple", want: "meeting.color"},
		{name: "bad schedule", data: "watch_schedule: every minute", want: "watch_schedule"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0o600))

			_, err := Load(path)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoad_NonASCIIPrefix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prefixes:\n  \"é \": orange\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"é ": "orange"}, cfg.Prefixes)
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.LockTimeout = Duration(time.Minute)
	cfg.Meeting.ReminderMinutes = 5

	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "lock_timeout: 1m0s")

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/guilherme-santos/gluecal/internal"
)

// Duration is a time.Duration that reads and writes as "3s", "10m", ...
type Duration time.Duration

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var v string
	if err := node.Decode(&v); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

type GlueConfig struct {
	// Keyword marks a glue event when found anywhere in the title, ignoring case.
	Keyword string `yaml:"keyword"`
	// Title is the canonical casing every keyword occurrence is rewritten to.
	Title string `yaml:"title"`
	Color string `yaml:"color"`
}

type MeetingConfig struct {
	Keywords        []string `yaml:"keywords"`
	Platforms       []string `yaml:"platforms"`
	Color           string   `yaml:"color"`
	ReminderMinutes int      `yaml:"reminder_minutes"`
}

type Config struct {
	Platform   string `yaml:"platform"`
	CalendarID string `yaml:"calendar_id"`

	// CredentialsFile is the OAuth client file downloaded from the platform.
	CredentialsFile string `yaml:"credentials_file"`
	Database        string `yaml:"database"`
	LockFile        string `yaml:"lock_file"`

	LockTimeout Duration `yaml:"lock_timeout"`
	// Throttle is the pause after a provider write that is followed by a read.
	Throttle         Duration `yaml:"throttle"`
	RecentWindow     Duration `yaml:"recent_window"`
	RecentMaxResults int      `yaml:"recent_max_results"`
	WatchSchedule    string   `yaml:"watch_schedule"`

	// Prefixes maps a two-character title prefix to a color.
	Prefixes map[string]string `yaml:"prefixes"`
	Glue     GlueConfig        `yaml:"glue"`
	Meeting  MeetingConfig     `yaml:"meeting"`
}

func DefaultConfig() *Config {
	dir := defaultDir()
	return &Config{
		Platform:         "google",
		CalendarID:       "primary",
		CredentialsFile:  filepath.Join(dir, "credentials.json"),
		Database:         filepath.Join(dir, "gluecal.db"),
		LockFile:         filepath.Join(dir, "gluecal.lock"),
		LockTimeout:      Duration(30 * time.Second),
		Throttle:         Duration(3 * time.Second),
		RecentWindow:     Duration(10 * time.Minute),
		RecentMaxResults: 50,
		WatchSchedule:    "*/1 * * * *",
		Prefixes: map[string]string{
			"o ": "orange",
			"r ": "red",
		},
		Glue: GlueConfig{
			Keyword: "glue",
			Title:   "Glue",
			Color:   "gray",
		},
		Meeting: MeetingConfig{
			Keywords:        []string{"meet", "meeting", "call", "go", "train", "ride"},
			Platforms:       []string{"meet.google.com", "zoom.us", "webex.com", "gotomeeting.com", "calendly.com"},
			Color:           "red",
			ReminderMinutes: 3,
		},
	}
}

// DefaultPath is where the configuration file lives unless told otherwise.
func DefaultPath() string {
	return filepath.Join(defaultDir(), "config.yaml")
}

func defaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "gluecal")
}

// Normalize fills zero values with defaults so partial files still work.
func (c *Config) Normalize() {
	def := DefaultConfig()

	if c.Platform == "" {
		c.Platform = def.Platform
	}
	if c.CalendarID == "" {
		c.CalendarID = def.CalendarID
	}
	if c.CredentialsFile == "" {
		c.CredentialsFile = def.CredentialsFile
	}
	if c.Database == "" {
		c.Database = def.Database
	}
	if c.LockFile == "" {
		c.LockFile = def.LockFile
	}
	if c.LockTimeout <= 0 {
		c.LockTimeout = def.LockTimeout
	}
	if c.Throttle < 0 {
		c.Throttle = 0
	}
	if c.RecentWindow <= 0 {
		c.RecentWindow = def.RecentWindow
	}
	if c.RecentMaxResults <= 0 {
		c.RecentMaxResults = def.RecentMaxResults
	}
	if c.WatchSchedule == "" {
		c.WatchSchedule = def.WatchSchedule
	}
	if c.Prefixes == nil {
		c.Prefixes = def.Prefixes
	}
	if c.Glue.Keyword == "" {
		c.Glue.Keyword = def.Glue.Keyword
	}
	if c.Glue.Title == "" {
		c.Glue.Title = def.Glue.Title
	}
	if c.Glue.Color == "" {
		c.Glue.Color = def.Glue.Color
	}
	if c.Meeting.Keywords == nil {
		c.Meeting.Keywords = def.Meeting.Keywords
	}
	if c.Meeting.Platforms == nil {
		c.Meeting.Platforms = def.Meeting.Platforms
	}
	if c.Meeting.Color == "" {
		c.Meeting.Color = def.Meeting.Color
	}
	if c.Meeting.ReminderMinutes <= 0 {
		c.Meeting.ReminderMinutes = def.Meeting.ReminderMinutes
	}
}

// Validate checks the values Normalize can't fix.
func (c *Config) Validate() error {
	if !strings.EqualFold(c.Glue.Title, c.Glue.Keyword) {
		return fmt.Errorf("glue.title %q must be a casing of glue.keyword %q", c.Glue.Title, c.Glue.Keyword)
	}
	for prefix, color := range c.Prefixes {
		if utf8.RuneCountInString(prefix) != 2 {
			return fmt.Errorf("prefix %q must be two characters long", prefix)
		}
		if _, ok := internal.ParseColor(color); !ok {
			return fmt.Errorf("prefix %q: unknown color %q", prefix, color)
		}
	}
	if _, err := cron.ParseStandard(c.WatchSchedule); err != nil {
		return fmt.Errorf("watch_schedule %q: %w", c.WatchSchedule, err)
	}
	if _, ok := internal.ParseColor(c.Glue.Color); !ok {
		return fmt.Errorf("glue.color: unknown color %q", c.Glue.Color)
	}
	if _, ok := internal.ParseColor(c.Meeting.Color); !ok {
		return fmt.Errorf("meeting.color: unknown color %q", c.Meeting.Color)
	}
	return nil
}

// Load reads the YAML file at path. On first run the defaults are written to
// path and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := DefaultConfig()
		return cfg, Save(path, cfg)
	}
	if err != nil {
		return nil, err
	}

	// Missing keys keep their default, so "throttle: 0s" disables the pause.
	cfg := DefaultConfig()
	cfg.Prefixes = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".gluecal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

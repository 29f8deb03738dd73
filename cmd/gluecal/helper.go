package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/guilherme-santos/gluecal/calendar"
	"github.com/guilherme-santos/gluecal/calendar/google"
	"github.com/guilherme-santos/gluecal/file"
	"github.com/guilherme-santos/gluecal/internal"
	"github.com/guilherme-santos/gluecal/internal/classify"
	"github.com/guilherme-santos/gluecal/internal/dispatch"
	"github.com/guilherme-santos/gluecal/internal/glue"
	"github.com/guilherme-santos/gluecal/internal/lock"
	"github.com/guilherme-santos/gluecal/internal/recent"
	"github.com/guilherme-santos/gluecal/internal/sqlite"
)

const googlePlatform = "google"

// app is everything a command needs to work on the configured calendar.
type app struct {
	cfg      *file.Config
	output   io.Writer
	storage  *sqlite.Storage
	provider internal.Provider
	store    *glue.Store
	engine   *glue.Engine
}

func openStorage(opts *RootOptions) (*file.Config, *sqlite.Storage, error) {
	cfg, err := file.Load(opts.ConfigFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	storage, err := sqlite.Open(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return cfg, storage, nil
}

func openApp(ctx context.Context, opts *RootOptions, w io.Writer) (*app, error) {
	cfg, storage, err := openStorage(opts)
	if err != nil {
		return nil, err
	}

	acc, err := storage.Account(ctx, cfg.Platform)
	if errors.Is(err, internal.ErrNotFound) {
		storage.Close()
		return nil, fmt.Errorf("no %s account configured, run \"gluecal configure\" first", cfg.Platform)
	}
	if err != nil {
		storage.Close()
		return nil, err
	}

	mux, err := newMux(w, cfg, opts.Verbose)
	if err != nil {
		storage.Close()
		return nil, err
	}
	platform, err := mux.Get(cfg.Platform)
	if err != nil {
		storage.Close()
		return nil, err
	}
	provider, err := platform.Provider(ctx, acc, cfg.CalendarID)
	if err != nil {
		storage.Close()
		return nil, fmt.Errorf("%s: %w", acc.ID(), err)
	}

	store := glue.NewStore(w, storage)
	return &app{
		cfg:      cfg,
		output:   w,
		storage:  storage,
		provider: provider,
		store:    store,
		engine: glue.NewEngine(w, provider, store, glue.Options{
			Keyword:  glue.NewKeyword(cfg.Glue.Keyword, cfg.Glue.Title),
			Color:    color(cfg.Glue.Color),
			Throttle: time.Duration(cfg.Throttle),
		}),
	}, nil
}

func (a *app) Close() error {
	return a.storage.Close()
}

// dispatcher returns a Dispatcher with its own handle on the lock file, so
// concurrent dispatchers contend on it like separate processes do.
func (a *app) dispatcher() (*dispatch.Dispatcher, error) {
	lk, err := lock.New(a.cfg.LockFile)
	if err != nil {
		return nil, err
	}
	return dispatch.New(
		a.output,
		lk,
		recent.New(a.output, a.provider, a.cfg.RecentMaxResults),
		a.engine,
		classify.New(rules(a.cfg)),
		a.provider,
		dispatch.Options{
			LockTimeout: time.Duration(a.cfg.LockTimeout),
			Window:      time.Duration(a.cfg.RecentWindow),
		},
	), nil
}

func newMux(w io.Writer, cfg *file.Config, verbose bool) (internal.Mux, error) {
	googleCal, err := newGoogleClient(w, cfg, verbose)
	if err != nil {
		return nil, err
	}

	mux := calendar.NewMux()
	mux.Register(googlePlatform, googleCal)
	return mux, nil
}

func newGoogleClient(w io.Writer, cfg *file.Config, verbose bool) (*google.Client, error) {
	credJSON, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}
	googleCal, err := google.NewClient(w, credJSON)
	if err != nil {
		return nil, err
	}
	googleCal.Verbose = verbose
	return googleCal, nil
}

func rules(cfg *file.Config) classify.Rules {
	r := classify.Rules{
		Prefixes:         make(map[string]internal.Color, len(cfg.Prefixes)),
		MeetingKeywords:  cfg.Meeting.Keywords,
		MeetingPlatforms: cfg.Meeting.Platforms,
		MeetingColor:     color(cfg.Meeting.Color),
		ReminderMinutes:  cfg.Meeting.ReminderMinutes,
	}
	for prefix, name := range cfg.Prefixes {
		r.Prefixes[prefix] = color(name)
	}
	return r
}

// color parses a name already checked by file.Config.Validate.
func color(name string) internal.Color {
	c, _ := internal.ParseColor(name)
	return c
}

package glue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/guilherme-santos/gluecal/internal"
)

// Snapshot is the last known layout of a glue event: where it started and
// which events were fully inside it at that moment.
type Snapshot struct {
	Anchor   time.Time
	Children []Child
}

// Child is an event contained in a glue event, positioned relative to the
// glue event's start.
type Child struct {
	ID       string
	Title    string
	Offset   time.Duration
	Duration time.Duration
}

// Span returns where c lands when the glue event starts at anchor.
func (c Child) Span(anchor time.Time) internal.Span {
	start := anchor.Add(c.Offset)
	return internal.Span{Start: start, End: start.Add(c.Duration)}
}

const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

type snapshotRecord struct {
	StartTime       string        `json:"startTime"`
	ContainedEvents []childRecord `json:"containedEvents"`
}

type childRecord struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	RelativeStart int64  `json:"relativeStart"`
	Duration      int64  `json:"duration"`
}

// Encode serializes s to its persisted JSON form. Offsets and durations are
// stored as integer milliseconds.
func Encode(s *Snapshot) (string, error) {
	rec := snapshotRecord{
		StartTime:       s.Anchor.UTC().Format(timestampFormat),
		ContainedEvents: make([]childRecord, len(s.Children)),
	}
	for i, c := range s.Children {
		rec.ContainedEvents[i] = childRecord{
			ID:            c.ID,
			Title:         c.Title,
			RelativeStart: c.Offset.Milliseconds(),
			Duration:      c.Duration.Milliseconds(),
		}
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

var errCorrupt = errors.New("corrupt snapshot")

func Decode(v string) (*Snapshot, error) {
	var rec snapshotRecord
	if err := json.Unmarshal([]byte(v), &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorrupt, err)
	}
	anchor, err := time.Parse(time.RFC3339, rec.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: startTime: %v", errCorrupt, err)
	}

	s := &Snapshot{
		Anchor:   anchor,
		Children: make([]Child, 0, len(rec.ContainedEvents)),
	}
	for _, c := range rec.ContainedEvents {
		if c.ID == "" || c.Duration < 0 {
			return nil, fmt.Errorf("%w: invalid child %q", errCorrupt, c.ID)
		}
		s.Children = append(s.Children, Child{
			ID:       c.ID,
			Title:    c.Title,
			Offset:   time.Duration(c.RelativeStart) * time.Millisecond,
			Duration: time.Duration(c.Duration) * time.Millisecond,
		})
	}
	return s, nil
}

// Properties is a durable string key-value store.
type Properties interface {
	Property(_ context.Context, key string) (value string, ok bool, _ error)
	SetProperty(_ context.Context, key, value string) error
	Properties(context.Context) (map[string]string, error)
	DeleteAllProperties(context.Context) error
}

// Store keeps one snapshot per glue event, keyed by the event's bare id.
type Store struct {
	output io.Writer
	props  Properties
}

func NewStore(output io.Writer, props Properties) *Store {
	if output == nil {
		output = os.Stdout
	}
	return &Store{
		output: output,
		props:  props,
	}
}

// Get returns the snapshot stored for glueID. A missing, unreadable or
// corrupt snapshot is reported as absent.
func (s *Store) Get(ctx context.Context, glueID string) (*Snapshot, bool) {
	key := internal.BareID(glueID)

	v, ok, err := s.props.Property(ctx, key)
	if err != nil {
		logf(s.output, nil, "Unable to read snapshot %s: %v", key, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	snap, err := Decode(v)
	if err != nil {
		logf(s.output, nil, "Ignoring snapshot %s: %v", key, err)
		return nil, false
	}
	return snap, true
}

func (s *Store) Put(ctx context.Context, glueID string, snap *Snapshot) error {
	v, err := Encode(snap)
	if err != nil {
		return err
	}
	return s.props.SetProperty(ctx, internal.BareID(glueID), v)
}

// All returns every decodable snapshot by glue id.
func (s *Store) All(ctx context.Context) (map[string]*Snapshot, error) {
	props, err := s.props.Properties(ctx)
	if err != nil {
		return nil, err
	}
	res := make(map[string]*Snapshot, len(props))
	for k, v := range props {
		snap, err := Decode(v)
		if err != nil {
			logf(s.output, nil, "Ignoring snapshot %s: %v", k, err)
			continue
		}
		res[k] = snap
	}
	return res, nil
}

// ClearAll deletes every stored snapshot. It's destructive: every glue event
// goes back to the first-time-seen path.
func (s *Store) ClearAll(ctx context.Context) error {
	return s.props.DeleteAllProperties(ctx)
}

package glue

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guilherme-santos/gluecal/internal/calendartest"
)

func testSnapshot() *Snapshot {
	return &Snapshot{
		Anchor: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC),
		Children: []Child{
			{ID: "abc@google.com", Title: "Write report", Offset: 15 * time.Minute, Duration: 30 * time.Minute},
			{ID: "def", Title: "Review", Offset: -5 * time.Minute, Duration: 15 * time.Minute},
		},
	}
}

func TestEncode_Golden(t *testing.T) {
	v, err := Encode(testSnapshot())
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "snapshot", []byte(v))
}

func TestDecode(t *testing.T) {
	v, err := Encode(testSnapshot())
	require.NoError(t, err)

	snap, err := Decode(v)
	require.NoError(t, err)
	assert.True(t, snap.Anchor.Equal(testSnapshot().Anchor))
	assert.Equal(t, testSnapshot().Children, snap.Children)
}

func TestDecode_Corrupt(t *testing.T) {
	for _, v := range []string{
		"",
		"not json",
		"null",
		`{"startTime":"yesterday","containedEvents":[]}`,
		`{"startTime":"2024-03-04T10:00:00.000Z","containedEvents":[{"id":"","duration":1}]}`,
		`{"startTime":"2024-03-04T10:00:00.000Z","containedEvents":[{"id":"a","duration":-1}]}`,
	} {
		_, err := Decode(v)
		assert.ErrorIs(t, err, errCorrupt, v)
	}
}

func TestStore_KeyedByBareID(t *testing.T) {
	ctx := context.Background()
	props := calendartest.NewProperties()
	store := NewStore(&bytes.Buffer{}, props)

	require.NoError(t, store.Put(ctx, "glue1@google.com", testSnapshot()))

	_, ok, err := props.Property(ctx, "glue1")
	require.NoError(t, err)
	assert.True(t, ok)

	snap, ok := store.Get(ctx, "glue1")
	require.True(t, ok)
	assert.Len(t, snap.Children, 2)
}

func TestStore_CorruptIsAbsent(t *testing.T) {
	ctx := context.Background()
	props := calendartest.NewProperties()
	require.NoError(t, props.SetProperty(ctx, "glue1", "{broken"))
	var out bytes.Buffer
	store := NewStore(&out, props)

	_, ok := store.Get(ctx, "glue1")
	assert.False(t, ok)
	assert.Contains(t, out.String(), "Ignoring snapshot glue1")
}

func TestStore_ReadErrorIsAbsent(t *testing.T) {
	props := calendartest.NewProperties()
	props.Err = errors.New("disk gone")
	store := NewStore(&bytes.Buffer{}, props)

	_, ok := store.Get(context.Background(), "glue1")
	assert.False(t, ok)
}

func TestStore_ClearAll(t *testing.T) {
	ctx := context.Background()
	store := NewStore(&bytes.Buffer{}, calendartest.NewProperties())
	require.NoError(t, store.Put(ctx, "a", testSnapshot()))
	require.NoError(t, store.Put(ctx, "b", testSnapshot()))

	all, err := store.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, store.ClearAll(ctx))
	all, err = store.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

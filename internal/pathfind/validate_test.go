package pathfind

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deadside-tools/deadside-ingest/internal/domain"
)

func TestValidator_DeathEvents(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		want    bool
	}{
		{
			name:    "csv file present",
			entries: append(dotEntries(), file("2026.08.25-00.00.00.csv")),
			want:    true,
		},
		{
			name:    "only non-csv files",
			entries: append(dotEntries(), file("readme.txt")),
			want:    false,
		},
		{
			name:    "csv-named directory is not a match",
			entries: append(dotEntries(), dir("archive.csv")),
			want:    false,
		},
		{
			name:    "dot entries alone never match",
			entries: dotEntries(),
			want:    false,
		},
		{
			name:    "empty directory",
			entries: nil,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testServer()
			fs := newFakeRemote()
			fs.addDir(s, "some/dir", tt.entries...)

			v := NewValidator(fs, NewCache(), testLogger(t))
			got := v.IsValid(context.Background(), s, "some/dir", domain.DeathEvents)

			assert.Equal(t, tt.want, got)
			assert.Zero(t, fs.openSessions, "session must be released")
		})
	}
}

func TestValidator_EngineLogExactName(t *testing.T) {
	s := testServer()
	fs := newFakeRemote()
	fs.addDir(s, "srv/Logs", append(dotEntries(), file("Deadside.log"), file("Deadside.log.bak"))...)
	fs.addDir(s, "srv/OldLogs", append(dotEntries(), file("deadside.log"))...)

	v := NewValidator(fs, NewCache(), testLogger(t))

	assert.True(t, v.IsValid(context.Background(), s, "srv/Logs", domain.EngineLog))
	assert.False(t, v.IsValid(context.Background(), s, "srv/OldLogs", domain.EngineLog),
		"engine log match is exact, including case")
}

func TestValidator_TransportFailureIsFalse(t *testing.T) {
	s := testServer()

	t.Run("connect error", func(t *testing.T) {
		fs := newFakeRemote()
		fs.connectErr = errors.New("dial tcp: connection refused")

		v := NewValidator(fs, NewCache(), testLogger(t))
		assert.False(t, v.IsValid(context.Background(), s, "any/dir", domain.DeathEvents))
	})

	t.Run("listing error", func(t *testing.T) {
		fs := newFakeRemote()
		fs.addDir(s, "flaky/dir", file("a.csv"))
		fs.failPaths["flaky/dir"] = true

		v := NewValidator(fs, NewCache(), testLogger(t))
		assert.False(t, v.IsValid(context.Background(), s, "flaky/dir", domain.DeathEvents))
		assert.Zero(t, fs.openSessions, "session must be released on failure too")
	})
}

func TestValidator_RecordsSuccessInCache(t *testing.T) {
	s := testServer()
	fs := newFakeRemote()
	fs.addDir(s, "good/deathlogs", file("a.csv"))

	cache := NewCache()
	v := NewValidator(fs, cache, testLogger(t))

	require.True(t, v.IsValid(context.Background(), s, "good/deathlogs", domain.DeathEvents))

	got, ok := cache.Get(s, domain.DeathEvents)
	require.True(t, ok)
	assert.Equal(t, "good/deathlogs", got)
}

func TestValidator_EmptyPath(t *testing.T) {
	s := testServer()
	fs := newFakeRemote()

	v := NewValidator(fs, NewCache(), testLogger(t))

	assert.False(t, v.IsValid(context.Background(), s, "", domain.DeathEvents))
	assert.Zero(t, fs.connectCount, "empty path must not cost a round-trip")
}

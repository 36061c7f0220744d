package pathfind

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deadside-tools/deadside-ingest/internal/domain"
)

func newTestResolver(t *testing.T, fs RemoteFS) *Resolver {
	t.Helper()
	return NewResolver(fs, NewCache(), testLogger(t))
}

func TestResolve_CacheFastPath(t *testing.T) {
	s := testServer()
	fs := newFakeRemote()
	fs.addDir(s, s.DeathlogDirectory, append(dotEntries(), file("a.csv"))...)

	r := newTestResolver(t, fs)
	ctx := context.Background()

	first := r.Resolve(ctx, s, domain.DeathEvents)
	require.Equal(t, s.DeathlogDirectory, first)

	listsAfterFirst := fs.listCount(s, s.DeathlogDirectory)

	second := r.Resolve(ctx, s, domain.DeathEvents)
	assert.Equal(t, first, second, "resolve is idempotent with no remote change")

	// The second call re-validates the cache hit exactly once and does no
	// candidate-pattern work.
	assert.Equal(t, listsAfterFirst+1, fs.listCount(s, s.DeathlogDirectory))
}

func TestResolve_CandidateOrdering(t *testing.T) {
	// Only H/S/actual/deathlogs (fourth template) exists; the configured
	// path is stale. Earlier candidates fail, later ones are never tried.
	s := &domain.GameServer{
		GuildID:           "g",
		ServerID:          "S",
		Host:              "H",
		DeathlogDirectory: "stale/actual/deathlogs",
	}

	fs := newFakeRemote()
	fs.addDir(s, "H/S/actual/deathlogs", file("d.csv"))
	// A later-order candidate that would also validate.
	fs.addDir(s, "S/actual/deathlogs", file("d.csv"))

	r := newTestResolver(t, fs)
	got := r.Resolve(context.Background(), s, domain.DeathEvents)

	assert.Equal(t, "H/S/actual/deathlogs", got)
	assert.Zero(t, fs.listCount(s, "S/actual/deathlogs"),
		"resolution terminates on first success; later candidates untouched")
}

func TestResolve_SkipsShapeCheckFailures(t *testing.T) {
	// Configured path has no category shape: it must not be probed as-is.
	s := testServer()
	s.DeathlogDirectory = "completely/unrelated"

	fs := newFakeRemote()
	fs.addDir(s, "play.example.net_emerald/actual1/deathlogs", file("a.csv"))

	r := newTestResolver(t, fs)
	got := r.Resolve(context.Background(), s, domain.DeathEvents)

	assert.Equal(t, "play.example.net_emerald/actual1/deathlogs", got)
	assert.Zero(t, fs.listCount(s, "completely/unrelated"))
}

func TestResolve_BackslashShapeAccepted(t *testing.T) {
	// Windows-hosted records carry backslash separators; the shape check
	// accepts them as evidence and the path is validated as configured.
	s := testServer()
	s.DeathlogDirectory = `C:\game\actual1\deathlogs`

	fs := newFakeRemote()
	fs.addDir(s, s.DeathlogDirectory, file("a.csv"))

	r := newTestResolver(t, fs)

	assert.Equal(t, s.DeathlogDirectory, r.Resolve(context.Background(), s, domain.DeathEvents))
}

func TestResolve_TenantIsolation(t *testing.T) {
	// Identical display name and host in two guilds, with different
	// remote layouts, resolve independently.
	a := &domain.GameServer{GuildID: "guild-a", ServerID: "emerald", Host: "h", DeathlogDirectory: "x"}
	b := &domain.GameServer{GuildID: "guild-b", ServerID: "emerald", Host: "h", DeathlogDirectory: "x"}

	fs := newFakeRemote()
	fs.addDir(a, "h_emerald/actual1/deathlogs", file("a.csv"))
	fs.addDir(b, "h/emerald/actual/deathlogs", file("b.csv"))

	cache := NewCache()
	r := NewResolver(fs, cache, testLogger(t))
	ctx := context.Background()

	gotA := r.Resolve(ctx, a, domain.DeathEvents)
	gotB := r.Resolve(ctx, b, domain.DeathEvents)

	assert.Equal(t, "h_emerald/actual1/deathlogs", gotA)
	assert.Equal(t, "h/emerald/actual/deathlogs", gotB)

	cachedA, ok := cache.Get(a, domain.DeathEvents)
	require.True(t, ok)
	cachedB, ok := cache.Get(b, domain.DeathEvents)
	require.True(t, ok)
	assert.NotEqual(t, cachedA, cachedB)
}

func TestResolve_CacheInvalidationOnStaleHit(t *testing.T) {
	s := testServer()
	fs := newFakeRemote()
	fs.addDir(s, s.DeathlogDirectory, file("a.csv"))

	r := newTestResolver(t, fs)
	ctx := context.Background()

	require.Equal(t, s.DeathlogDirectory, r.Resolve(ctx, s, domain.DeathEvents))

	// The remote layout changes: the cached directory disappears and the
	// files move to a different convention.
	fs.removeDir(s, s.DeathlogDirectory)
	fs.addDir(s, "play.example.net/emerald/actual/deathlogs", file("a.csv"))

	got := r.Resolve(ctx, s, domain.DeathEvents)

	assert.Equal(t, "play.example.net/emerald/actual/deathlogs", got,
		"stale cache entry must not be returned")

	_, ok := r.Cache().Get(s, domain.DeathEvents)
	require.True(t, ok)

	cached, _ := r.Cache().Get(s, domain.DeathEvents)
	assert.Equal(t, got, cached)
}

func TestResolve_ExhaustionReturnsOriginal(t *testing.T) {
	s := testServer()
	fs := newFakeRemote() // nothing exists remotely

	r := newTestResolver(t, fs)
	got := r.Resolve(context.Background(), s, domain.DeathEvents)

	assert.Equal(t, s.DeathlogDirectory, got,
		"exhaustion is a soft failure: original value comes back unchanged")
}

func TestResolve_NilServer(t *testing.T) {
	r := newTestResolver(t, newFakeRemote())
	assert.Empty(t, r.Resolve(context.Background(), nil, domain.DeathEvents))
}

func TestResolve_FallbackResultCachedWhenShaped(t *testing.T) {
	s := testServer()
	s.DeathlogDirectory = "stale/actual/deathlogs"

	fs := newFakeRemote()
	// No canonical candidate exists; the files live under an unanticipated
	// nesting inside the conventional root.
	fs.addDir(s, "play.example.net_emerald", dir("backup"))
	fs.addDir(s, "play.example.net_emerald/backup", dir("deathlogs-old"), dir("actual"))
	fs.addDir(s, "play.example.net_emerald/backup/deathlogs-old")
	fs.addDir(s, "play.example.net_emerald/backup/actual", dir("deathlogs"))
	fs.addDir(s, "play.example.net_emerald/backup/actual/deathlogs", file("x.csv"))

	r := newTestResolver(t, fs)
	got := r.Resolve(context.Background(), s, domain.DeathEvents)

	require.Equal(t, "play.example.net_emerald/backup/actual/deathlogs", got)

	cached, ok := r.Cache().Get(s, domain.DeathEvents)
	require.True(t, ok, "shaped fallback result is cached")
	assert.Equal(t, got, cached)
}

func TestFixServerPaths_UpdatesBothCategories(t *testing.T) {
	s := testServer()
	s.DeathlogDirectory = "stale/actual/deathlogs"
	s.LogDirectory = "stale/Logs"

	fs := newFakeRemote()
	fs.addDir(s, "play.example.net_emerald/actual1/deathlogs", file("a.csv"))
	fs.addDir(s, "play.example.net_emerald/Logs", file("Deadside.log"))

	r := newTestResolver(t, fs)
	updated := r.FixServerPaths(context.Background(), s)

	assert.True(t, updated)
	assert.Equal(t, "play.example.net_emerald/actual1/deathlogs", s.DeathlogDirectory)
	assert.Equal(t, "play.example.net_emerald/Logs", s.LogDirectory)
}

func TestFixServerPaths_NoChangeNoUpdate(t *testing.T) {
	s := testServer()
	fs := newFakeRemote()
	fs.addDir(s, s.DeathlogDirectory, file("a.csv"))
	fs.addDir(s, s.LogDirectory, file("Deadside.log"))

	r := newTestResolver(t, fs)

	assert.False(t, r.FixServerPaths(context.Background(), s))
}

func TestFixServerPaths_RestrictedServerNeverMutated(t *testing.T) {
	s := testServer()
	s.ReadOnly = true
	s.DeathlogDirectory = "stale/actual/deathlogs"
	s.LogDirectory = "stale/Logs"

	fs := newFakeRemote()
	fs.addDir(s, "play.example.net_emerald/actual1/deathlogs", file("a.csv"))
	fs.addDir(s, "play.example.net_emerald/Logs", file("Deadside.log"))

	r := newTestResolver(t, fs)
	updated := r.FixServerPaths(context.Background(), s)

	assert.False(t, updated)
	assert.Equal(t, "stale/actual/deathlogs", s.DeathlogDirectory)
	assert.Equal(t, "stale/Logs", s.LogDirectory)

	// Read-only discovery still warmed the cache.
	cached, ok := r.Cache().Get(s, domain.DeathEvents)
	require.True(t, ok)
	assert.Equal(t, "play.example.net_emerald/actual1/deathlogs", cached)
}

func TestHasCategoryShape(t *testing.T) {
	tests := []struct {
		path string
		cat  domain.Category
		want bool
	}{
		{"h_s/actual1/deathlogs", domain.DeathEvents, true},
		{"h_s/actual/deathlogs", domain.DeathEvents, true},
		{`h\actual\deathlogs`, domain.DeathEvents, true},
		{"h_s/Logs", domain.EngineLog, true},
		{`h\Logs`, domain.EngineLog, true},
		{"h_s/logs", domain.EngineLog, false},
		{"h_s/deathlogs", domain.DeathEvents, false},
		{"", domain.DeathEvents, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, hasCategoryShape(tt.path, tt.cat), "path %q", tt.path)
	}
}

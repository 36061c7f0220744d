package pathfind

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/deadside-tools/deadside-ingest/internal/domain"
)

// fakeRemote is an in-memory RemoteFS with per-tenant layouts, injectable
// failures, and call counting, so tests can assert cache fast paths and
// session hygiene without a network.
type fakeRemote struct {
	mu sync.Mutex

	// tenant key → remote path → directory entries
	layouts map[string]map[string][]Entry
	// tenant key → remote file path → contents
	contents map[string]map[string][]byte

	connectErr error
	// paths whose List always fails, across all tenants
	failPaths map[string]bool

	connectCount int
	listCounts   map[string]int // "tenant path" → count
	openSessions int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		layouts:    make(map[string]map[string][]Entry),
		contents:   make(map[string]map[string][]byte),
		failPaths:  make(map[string]bool),
		listCounts: make(map[string]int),
	}
}

func tenantKey(s *domain.GameServer) string {
	return s.GuildID + "/" + s.ServerID
}

// addDir registers a directory with the given entries for a server.
func (f *fakeRemote) addDir(s *domain.GameServer, path string, entries ...Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()

	k := tenantKey(s)
	if f.layouts[k] == nil {
		f.layouts[k] = make(map[string][]Entry)
	}

	f.layouts[k][path] = entries
}

// addFile registers a file's contents and makes it appear in its parent
// directory listing if the parent is already registered.
func (f *fakeRemote) addFile(s *domain.GameServer, path string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	k := tenantKey(s)
	if f.contents[k] == nil {
		f.contents[k] = make(map[string][]byte)
	}

	f.contents[k][path] = data
}

// removeDir drops a directory, simulating the remote layout changing.
func (f *fakeRemote) removeDir(s *domain.GameServer, path string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.layouts[tenantKey(s)], path)
}

func (f *fakeRemote) listCount(s *domain.GameServer, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.listCounts[tenantKey(s)+" "+path]
}

func (f *fakeRemote) Connect(_ context.Context, s *domain.GameServer) (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.connectCount++

	if f.connectErr != nil {
		return nil, f.connectErr
	}

	f.openSessions++

	return &fakeSession{fs: f, tenant: tenantKey(s)}, nil
}

type fakeSession struct {
	fs     *fakeRemote
	tenant string
	closed bool
}

func (s *fakeSession) List(_ context.Context, path string) ([]Entry, error) {
	s.fs.mu.Lock()
	defer s.fs.mu.Unlock()

	s.fs.listCounts[s.tenant+" "+path]++

	if s.fs.failPaths[path] {
		return nil, fmt.Errorf("fake: listing %s: connection reset", path)
	}

	entries, ok := s.fs.layouts[s.tenant][path]
	if !ok {
		return nil, fmt.Errorf("fake: %s: no such directory", path)
	}

	return entries, nil
}

func (s *fakeSession) Read(_ context.Context, path string) ([]byte, error) {
	s.fs.mu.Lock()
	defer s.fs.mu.Unlock()

	data, ok := s.fs.contents[s.tenant][path]
	if !ok {
		return nil, fmt.Errorf("fake: %s: no such file", path)
	}

	return data, nil
}

func (s *fakeSession) Close() error {
	s.fs.mu.Lock()
	defer s.fs.mu.Unlock()

	if !s.closed {
		s.closed = true
		s.fs.openSessions--
	}

	return nil
}

// file and dir are entry constructors for terser test setup.
func file(name string) Entry { return Entry{Name: name} }
func dir(name string) Entry  { return Entry{Name: name, IsDir: true} }

// dotEntries are the directory self-references every real SFTP listing
// includes.
func dotEntries() []Entry {
	return []Entry{dir("."), dir("..")}
}

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

// testServer returns a plain server with explicit identifier fields.
func testServer() *domain.GameServer {
	return &domain.GameServer{
		GuildID:           "guild-1",
		ServerID:          "emerald",
		DisplayName:       "Emerald EU",
		Host:              "play.example.net",
		DeathlogDirectory: "play.example.net_emerald/actual1/deathlogs",
		LogDirectory:      "play.example.net_emerald/Logs",
	}
}

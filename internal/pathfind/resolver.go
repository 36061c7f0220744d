package pathfind

import (
	"context"
	"log/slog"
	"strings"

	"github.com/deadside-tools/deadside-ingest/internal/domain"
)

// Shape-check substrings: cheap evidence that a configured path follows
// a known convention for its category, before spending a round-trip on
// validation. Both slash families are accepted; some historical server
// records carry Windows-style separators.
var (
	deathEventShapes = []string{
		"/actual1/deathlogs",
		`\actual1\deathlogs`,
		"/actual/deathlogs",
		`\actual\deathlogs`,
	}

	engineLogShapes = []string{
		"/Logs",
		`\Logs`,
	}
)

// Resolver orchestrates cache, validator, generator, and fallback search
// into a single deterministic resolution sequence. Candidates are always
// tried in documented order — cache, current configuration, generated
// templates, recursive fallback — because earlier entries represent
// higher-confidence conventions and tests depend on the ordering.
type Resolver struct {
	fs     RemoteFS
	cache  *Cache
	gen    *Generator
	val    *Validator
	logger *slog.Logger

	// Fallback search bounds. Defaulted at construction; see SetSearchBounds.
	maxDepth int
	maxFiles int
}

// Fallback search bounds. Depth 3 covers every layout drift observed in
// the wild; 500 matches bounds the walk on huge trees.
const (
	defaultMaxDepth = 3
	defaultMaxFiles = 500
)

// NewResolver wires a resolver around an injected cache. The cache is
// shared with the validator so validation successes are recorded once.
func NewResolver(fs RemoteFS, cache *Cache, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}

	return &Resolver{
		fs:       fs,
		cache:    cache,
		gen:      NewGenerator(cache),
		val:      NewValidator(fs, cache, logger),
		logger:   logger,
		maxDepth: defaultMaxDepth,
		maxFiles: defaultMaxFiles,
	}
}

// SetSearchBounds overrides the fallback search bounds. Zero or negative
// values keep the current bound. Call before the resolver is in use;
// bounds are not synchronized.
func (r *Resolver) SetSearchBounds(maxDepth, maxFiles int) {
	if maxDepth > 0 {
		r.maxDepth = maxDepth
	}

	if maxFiles > 0 {
		r.maxFiles = maxFiles
	}
}

// Resolve returns the best currently-valid path for a server/category.
// Resolution is terminal on first success:
//
//  1. cache hit, re-validated
//  2. current configuration, shape-checked then validated
//  3. generated candidates in order
//  4. recursive fallback search from the conventional root
//
// When everything fails the original configured value is returned
// unchanged — exhaustion is a soft failure, not an error.
func (r *Resolver) Resolve(ctx context.Context, server *domain.GameServer, cat domain.Category) string {
	if server == nil {
		return ""
	}

	current := server.DirectoryFor(cat)

	// Step 1: cached path, re-validated before trusting.
	if cached, ok := r.cache.Get(server, cat); ok {
		if r.val.IsValid(ctx, server, cached, cat) {
			return cached
		}

		// Stale entry: drop it and fall through to a fresh resolution.
		r.cache.Invalidate(server, cat)
		r.logger.Debug("pathfind: cached path went stale",
			"guild", server.GuildID,
			"server", server.ServerID,
			"category", cat.String(),
			"path", cached,
		)
	}

	// Step 2: the configured path may already be fine.
	if hasCategoryShape(current, cat) && r.val.IsValid(ctx, server, current, cat) {
		return current
	}

	// Step 3: canonical templates plus cache history, in order.
	for _, candidate := range r.gen.Generate(server, cat) {
		if candidate == current {
			continue
		}

		if r.val.IsValid(ctx, server, candidate, cat) {
			r.logger.Info("pathfind: resolved path",
				"guild", server.GuildID,
				"server", server.ServerID,
				"category", cat.String(),
				"from", current,
				"to", candidate,
			)

			return candidate
		}
	}

	// Step 4: unanticipated layout — bounded recursive search.
	if found, ok := r.searchFallback(ctx, server, conventionalRoot(server), cat, 0); ok {
		dir := directoryOf(found, cat)
		if hasCategoryShape(dir, cat) {
			r.cache.Put(server, cat, dir)
		}

		r.logger.Info("pathfind: fallback search recovered path",
			"guild", server.GuildID,
			"server", server.ServerID,
			"category", cat.String(),
			"path", found,
		)

		return dir
	}

	r.logger.Warn("pathfind: no valid path found, keeping configured value",
		"guild", server.GuildID,
		"server", server.ServerID,
		"category", cat.String(),
		"path", current,
	)

	return current
}

// FixServerPaths resolves both categories and rewrites the in-memory
// configuration when a better path was found. Returns true when either
// field changed. The resolver never persists; the caller hands the
// updated record to the store.
//
// Isolation-restricted servers are resolved read-only: the lookup still
// runs (and warms the cache) but configuration is never mutated.
func (r *Resolver) FixServerPaths(ctx context.Context, server *domain.GameServer) bool {
	if server == nil {
		return false
	}

	updated := false

	for _, cat := range []domain.Category{domain.DeathEvents, domain.EngineLog} {
		resolved := r.Resolve(ctx, server, cat)
		if resolved == "" || resolved == server.DirectoryFor(cat) {
			continue
		}

		if server.ReadOnly {
			r.logger.Info("pathfind: suppressing path update for restricted server",
				"guild", server.GuildID,
				"server", server.ServerID,
				"category", cat.String(),
				"resolved", resolved,
			)

			continue
		}

		server.SetDirectoryFor(cat, resolved)
		updated = true
	}

	return updated
}

// Cache exposes the resolver's cache for components that record
// discovery successes directly.
func (r *Resolver) Cache() *Cache {
	return r.cache
}

// hasCategoryShape reports whether a path looks like a known convention
// for the category. Pure string check, no network.
func hasCategoryShape(path string, cat domain.Category) bool {
	if path == "" {
		return false
	}

	shapes := deathEventShapes
	if cat == domain.EngineLog {
		shapes = engineLogShapes
	}

	for _, s := range shapes {
		if strings.Contains(path, s) {
			return true
		}
	}

	return false
}

// directoryOf normalizes a fallback result to a directory path. Death
// event searches already return the directory; engine-log searches
// return the file itself, so the filename is stripped.
func directoryOf(found string, cat domain.Category) string {
	if cat != domain.EngineLog {
		return found
	}

	if i := strings.LastIndex(found, "/"); i > 0 {
		return found[:i]
	}

	return found
}

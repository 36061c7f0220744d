package pathfind

import (
	"context"

	"github.com/deadside-tools/deadside-ingest/internal/domain"
)

// searchFallback is the last-resort recovery from a completely
// unanticipated remote layout: a bounded-depth walk from root that
// checks each directory level before descending, so the shallowest
// match always wins.
//
// For death events it returns the first directory containing at least
// one matching file; for the engine log it returns the exact file path.
// Every level opens and closes its own session, and a failure probing
// one subdirectory never aborts sibling exploration.
func (r *Resolver) searchFallback(
	ctx context.Context, server *domain.GameServer, root string, cat domain.Category, depth int,
) (string, bool) {
	// Depth cap is checked before opening a session — an over-deep branch
	// costs no round-trip.
	if depth > r.maxDepth || root == "" {
		return "", false
	}

	entries, ok := r.listLevel(ctx, server, root)
	if !ok {
		return "", false
	}

	matched := 0

	// Current level first: children are only visited when this level has
	// zero matches.
	for _, e := range entries {
		if e.Name == "." || e.Name == ".." {
			continue
		}

		if !entryMatches(e, cat) {
			continue
		}

		if cat == domain.EngineLog {
			return root + "/" + e.Name, true
		}

		matched++
		if matched >= r.maxFiles {
			break
		}
	}

	if matched > 0 {
		return root, true
	}

	for _, e := range entries {
		if !e.IsDir || e.Name == "." || e.Name == ".." {
			continue
		}

		if found, ok := r.searchFallback(ctx, server, root+"/"+e.Name, cat, depth+1); ok {
			return found, true
		}
	}

	return "", false
}

// listLevel lists one directory level through a fresh session. Transport
// failures are logged at debug and reported as "no entries" so the walk
// continues elsewhere.
func (r *Resolver) listLevel(ctx context.Context, server *domain.GameServer, path string) ([]Entry, bool) {
	session, err := r.fs.Connect(ctx, server)
	if err != nil {
		r.logger.Debug("pathfind: connect failed during fallback search",
			"guild", server.GuildID,
			"server", server.ServerID,
			"path", path,
			"error", err,
		)

		return nil, false
	}
	defer session.Close()

	entries, err := session.List(ctx, path)
	if err != nil {
		r.logger.Debug("pathfind: listing failed during fallback search",
			"guild", server.GuildID,
			"server", server.ServerID,
			"path", path,
			"error", err,
		)

		return nil, false
	}

	return entries, true
}

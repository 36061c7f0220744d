package pathfind

import (
	"context"
	"log/slog"
	"strings"

	"github.com/deadside-tools/deadside-ingest/internal/domain"
)

// Remote artifact naming contract.
const (
	// deathEventSuffix marks a rotating death-event file.
	deathEventSuffix = ".csv"
	// engineLogName is the canonical engine log filename.
	engineLogName = "Deadside.log"
)

// Validator confirms that a candidate directory currently contains the
// expected artifact for a category. Each call opens its own session and
// releases it on every exit path. Transport failures are converted to
// "not valid" — probing paths that do not exist is this subsystem's
// normal mode of operation, so failures log at debug level.
type Validator struct {
	fs     RemoteFS
	cache  *Cache
	logger *slog.Logger
}

// NewValidator creates a validator that records successes into cache.
func NewValidator(fs RemoteFS, cache *Cache, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Validator{fs: fs, cache: cache, logger: logger}
}

// IsValid reports whether path currently holds a matching artifact for
// the category. On success the path is recorded into the cache as a side
// effect; caching again elsewhere is harmless because Put is idempotent.
func (v *Validator) IsValid(ctx context.Context, server *domain.GameServer, path string, cat domain.Category) bool {
	if path == "" {
		return false
	}

	session, err := v.fs.Connect(ctx, server)
	if err != nil {
		v.logger.Debug("pathfind: connect failed during validation",
			"guild", server.GuildID,
			"server", server.ServerID,
			"path", path,
			"error", err,
		)

		return false
	}
	defer session.Close()

	entries, err := session.List(ctx, path)
	if err != nil {
		v.logger.Debug("pathfind: listing failed during validation",
			"guild", server.GuildID,
			"server", server.ServerID,
			"path", path,
			"error", err,
		)

		return false
	}

	if !hasArtifact(entries, cat) {
		return false
	}

	if v.cache != nil {
		v.cache.Put(server, cat, path)
	}

	return true
}

// hasArtifact checks a directory listing for the category's artifact.
// "." and ".." are never matches.
func hasArtifact(entries []Entry, cat domain.Category) bool {
	for _, e := range entries {
		if e.Name == "." || e.Name == ".." {
			continue
		}

		if entryMatches(e, cat) {
			return true
		}
	}

	return false
}

// entryMatches reports whether a single entry is the category's artifact:
// a regular .csv file for death events, the exact engine log filename
// for the engine log.
func entryMatches(e Entry, cat domain.Category) bool {
	if e.IsDir {
		return false
	}

	if cat == domain.EngineLog {
		return e.Name == engineLogName
	}

	return strings.HasSuffix(e.Name, deathEventSuffix)
}

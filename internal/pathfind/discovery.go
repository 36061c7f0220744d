package pathfind

import (
	"context"
	"log/slog"

	"github.com/deadside-tools/deadside-ingest/internal/domain"
)

// Discovery exposes the two operations ingestion actually consumes:
// listing a server's death-event files and locating its engine log.
// Both run the full resolution ladder and feed successes back into the
// cache so the next call short-circuits.
type Discovery struct {
	fs     RemoteFS
	res    *Resolver
	logger *slog.Logger
}

// NewDiscovery builds the discovery entry points on top of a resolver.
func NewDiscovery(fs RemoteFS, res *Resolver, logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}

	return &Discovery{fs: fs, res: res, logger: logger}
}

// FindDeathEventFiles returns the full remote paths of every death-event
// CSV currently visible for the server. The result is possibly empty,
// never nil. A reachable directory with zero files yet is an expected
// state, not a fault.
func (d *Discovery) FindDeathEventFiles(ctx context.Context, server *domain.GameServer) []string {
	files := []string{}

	if server == nil || server.DeathlogDirectory == "" {
		d.logger.Warn("pathfind: no death-event directory configured",
			"guild", guildOf(server),
			"server", serverOf(server),
		)

		return files
	}

	// Configured path as-is first.
	if found, ok := d.listDeathEventFiles(ctx, server, server.DeathlogDirectory); ok && len(found) > 0 {
		d.res.Cache().Put(server, domain.DeathEvents, server.DeathlogDirectory)
		return found
	}

	// Candidate sweep, validator-confirmed before listing.
	for _, candidate := range d.res.gen.Generate(server, domain.DeathEvents) {
		if candidate == server.DeathlogDirectory {
			continue
		}

		if !d.res.val.IsValid(ctx, server, candidate, domain.DeathEvents) {
			continue
		}

		if found, ok := d.listDeathEventFiles(ctx, server, candidate); ok && len(found) > 0 {
			d.logger.Info("pathfind: death-event files found in alternative path",
				"guild", server.GuildID,
				"server", server.ServerID,
				"path", candidate,
			)

			return found
		}
	}

	// Unanticipated layout: bounded recursive search from the root.
	if dir, ok := d.res.searchFallback(ctx, server, conventionalRoot(server), domain.DeathEvents, 0); ok {
		if found, listed := d.listDeathEventFiles(ctx, server, dir); listed && len(found) > 0 {
			d.res.Cache().Put(server, domain.DeathEvents, dir)
			d.logger.Info("pathfind: death-event files recovered by fallback search",
				"guild", server.GuildID,
				"server", server.ServerID,
				"path", dir,
			)

			return found
		}
	}

	return files
}

// FindEngineLogFile returns the full remote path of the server's engine
// log, or ok=false when it cannot be located anywhere.
func (d *Discovery) FindEngineLogFile(ctx context.Context, server *domain.GameServer) (string, bool) {
	if server == nil || server.LogDirectory == "" {
		d.logger.Warn("pathfind: no log directory configured",
			"guild", guildOf(server),
			"server", serverOf(server),
		)

		return "", false
	}

	if path, ok := d.engineLogIn(ctx, server, server.LogDirectory); ok {
		d.res.Cache().Put(server, domain.EngineLog, server.LogDirectory)
		return path, true
	}

	for _, candidate := range d.res.gen.Generate(server, domain.EngineLog) {
		if candidate == server.LogDirectory {
			continue
		}

		if path, ok := d.engineLogIn(ctx, server, candidate); ok {
			d.res.Cache().Put(server, domain.EngineLog, candidate)
			d.logger.Info("pathfind: engine log found in alternative path",
				"guild", server.GuildID,
				"server", server.ServerID,
				"path", candidate,
			)

			return path, true
		}
	}

	if path, ok := d.res.searchFallback(ctx, server, conventionalRoot(server), domain.EngineLog, 0); ok {
		dir := directoryOf(path, domain.EngineLog)
		if hasCategoryShape(dir, domain.EngineLog) {
			d.res.Cache().Put(server, domain.EngineLog, dir)
		}

		d.logger.Info("pathfind: engine log recovered by fallback search",
			"guild", server.GuildID,
			"server", server.ServerID,
			"path", path,
		)

		return path, true
	}

	return "", false
}

// listDeathEventFiles lists the .csv files in one directory through a
// fresh session. ok=false means the directory could not be probed at
// all; ok=true with an empty slice means "reachable but no files yet".
func (d *Discovery) listDeathEventFiles(ctx context.Context, server *domain.GameServer, dir string) ([]string, bool) {
	session, err := d.fs.Connect(ctx, server)
	if err != nil {
		d.logger.Debug("pathfind: connect failed during discovery",
			"guild", server.GuildID,
			"server", server.ServerID,
			"path", dir,
			"error", err,
		)

		return nil, false
	}
	defer session.Close()

	entries, err := session.List(ctx, dir)
	if err != nil {
		d.logger.Debug("pathfind: listing failed during discovery",
			"guild", server.GuildID,
			"server", server.ServerID,
			"path", dir,
			"error", err,
		)

		return nil, false
	}

	files := []string{}

	for _, e := range entries {
		if e.Name == "." || e.Name == ".." {
			continue
		}

		if entryMatches(e, domain.DeathEvents) {
			files = append(files, dir+"/"+e.Name)
		}
	}

	return files, true
}

// engineLogIn checks one directory for the canonical engine log file.
func (d *Discovery) engineLogIn(ctx context.Context, server *domain.GameServer, dir string) (string, bool) {
	session, err := d.fs.Connect(ctx, server)
	if err != nil {
		d.logger.Debug("pathfind: connect failed during discovery",
			"guild", server.GuildID,
			"server", server.ServerID,
			"path", dir,
			"error", err,
		)

		return "", false
	}
	defer session.Close()

	entries, err := session.List(ctx, dir)
	if err != nil {
		d.logger.Debug("pathfind: listing failed during discovery",
			"guild", server.GuildID,
			"server", server.ServerID,
			"path", dir,
			"error", err,
		)

		return "", false
	}

	for _, e := range entries {
		if entryMatches(e, domain.EngineLog) {
			return dir + "/" + engineLogName, true
		}
	}

	return "", false
}

// guildOf and serverOf tolerate nil servers in warn paths.
func guildOf(s *domain.GameServer) string {
	if s == nil {
		return ""
	}

	return s.GuildID
}

func serverOf(s *domain.GameServer) string {
	if s == nil {
		return ""
	}

	return s.ServerID
}

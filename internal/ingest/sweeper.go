package ingest

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/deadside-tools/deadside-ingest/internal/domain"
	"github.com/deadside-tools/deadside-ingest/internal/pathfind"
	"github.com/deadside-tools/deadside-ingest/internal/store"
)

// defaultWorkers bounds how many servers are swept in parallel.
const defaultWorkers = 4

// Report summarizes one sweep run across all tenants.
type Report struct {
	RunID       string
	Servers     int
	DeathEvents int
	LogEvents   int
	Failures    int
}

// Sweeper runs periodic ingestion: per server, discover the telemetry
// files, read bytes appended since the last sweep, parse them, and
// update the aggregates. Servers sweep in parallel through a bounded
// pool; a failure on one server never stops the others.
type Sweeper struct {
	fs      pathfind.RemoteFS
	disc    *pathfind.Discovery
	st      *store.Store
	logger  *slog.Logger
	workers int
}

// NewSweeper wires a sweeper. workers <= 0 selects the default pool size.
func NewSweeper(fs pathfind.RemoteFS, disc *pathfind.Discovery, st *store.Store, workers int, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}

	if workers <= 0 {
		workers = defaultWorkers
	}

	return &Sweeper{fs: fs, disc: disc, st: st, logger: logger, workers: workers}
}

// SweepAll sweeps every server of every guild. The returned report is
// always non-nil; per-server failures are counted, not propagated,
// because ingestion liveness matters more than any single tenant.
func (w *Sweeper) SweepAll(ctx context.Context) (*Report, error) {
	report := &Report{RunID: uuid.New().String()}

	guilds, err := w.st.ListGuildIDs(ctx)
	if err != nil {
		return report, fmt.Errorf("ingest: listing guilds: %w", err)
	}

	var servers []*domain.GameServer

	for _, guildID := range guilds {
		guildServers, err := w.st.FindAllByGuild(ctx, guildID)
		if err != nil {
			return report, fmt.Errorf("ingest: listing servers for guild %s: %w", guildID, err)
		}

		servers = append(servers, guildServers...)
	}

	report.Servers = len(servers)
	w.logger.Info("ingest: sweep starting",
		"run_id", report.RunID,
		"servers", len(servers),
		"workers", w.workers,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.workers)

	var mu sync.Mutex

	for _, server := range servers {
		server := server

		g.Go(func() error {
			deaths, logs, err := w.sweepServer(gctx, server)

			mu.Lock()
			defer mu.Unlock()

			report.DeathEvents += deaths
			report.LogEvents += logs

			if err != nil {
				report.Failures++
				w.logger.Warn("ingest: server sweep failed",
					"run_id", report.RunID,
					"guild", server.GuildID,
					"server", server.ServerID,
					"error", err,
				)
			}

			return nil // per-server failures never abort the sweep
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}

	w.logger.Info("ingest: sweep finished",
		"run_id", report.RunID,
		"death_events", report.DeathEvents,
		"log_events", report.LogEvents,
		"failures", report.Failures,
	)

	return report, nil
}

// sweepServer ingests one server's death-event files and engine log.
func (w *Sweeper) sweepServer(ctx context.Context, server *domain.GameServer) (int, int, error) {
	files := w.disc.FindDeathEventFiles(ctx, server)
	logPath, logFound := w.disc.FindEngineLogFile(ctx, server)

	if len(files) == 0 && !logFound {
		// Nothing discoverable right now; not a fault.
		return 0, 0, nil
	}

	// One session covers every read for this server.
	session, err := w.fs.Connect(ctx, server)
	if err != nil {
		return 0, 0, fmt.Errorf("ingest: connecting to %s/%s: %w", server.GuildID, server.ServerID, err)
	}
	defer session.Close()

	var deaths, logs int

	for _, path := range files {
		n, err := w.ingestDeathFile(ctx, session, server, path)
		if err != nil {
			// Keep going; the remaining files are independent.
			w.logger.Warn("ingest: death-event file skipped",
				"guild", server.GuildID,
				"server", server.ServerID,
				"path", path,
				"error", err,
			)

			continue
		}

		deaths += n
	}

	if logFound {
		n, err := w.ingestEngineLog(ctx, session, server, logPath)
		if err != nil {
			w.logger.Warn("ingest: engine log skipped",
				"guild", server.GuildID,
				"server", server.ServerID,
				"path", logPath,
				"error", err,
			)
		} else {
			logs = n
		}
	}

	return deaths, logs, nil
}

// ingestDeathFile parses the lines appended to one CSV since the last
// sweep and applies them to the aggregates. The events and the offset
// advance commit in one transaction, so a failed write re-reads the
// same lines next sweep instead of double counting part of them.
func (w *Sweeper) ingestDeathFile(
	ctx context.Context, session pathfind.Session, server *domain.GameServer, path string,
) (int, error) {
	chunk, base, err := w.readNew(ctx, session, server, path)
	if err != nil || chunk == "" {
		return 0, err
	}

	var events []domain.DeathEvent

	for _, line := range strings.Split(strings.TrimSuffix(chunk, "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		ev, err := ParseDeathEvent(line)
		if err != nil {
			w.logger.Warn("ingest: malformed death-event line",
				"guild", server.GuildID,
				"server", server.ServerID,
				"path", path,
			)

			continue
		}

		events = append(events, ev)
	}

	if err := w.st.RecordDeathEventsAt(ctx, server, path, events, base+int64(len(chunk))); err != nil {
		return 0, err
	}

	return len(events), nil
}

// ingestEngineLog classifies the lines appended to the engine log since
// the last sweep. Joins and disconnects are surfaced in the logs and the
// sweep report; unmatched lines are ignored.
func (w *Sweeper) ingestEngineLog(
	ctx context.Context, session pathfind.Session, server *domain.GameServer, path string,
) (int, error) {
	chunk, base, err := w.readNew(ctx, session, server, path)
	if err != nil || chunk == "" {
		return 0, err
	}

	events := 0

	for _, line := range strings.Split(strings.TrimSuffix(chunk, "\n"), "\n") {
		ev, ok := ClassifyLogLine(line)
		if !ok {
			continue
		}

		events++

		w.logger.Debug("ingest: engine-log event",
			"guild", server.GuildID,
			"server", server.ServerID,
			"kind", ev.Kind.String(),
			"player", ev.Player,
		)
	}

	return events, w.st.SetFileOffset(ctx, server, path, base+int64(len(chunk)))
}

// readNew reads the bytes of a remote file past the stored offset and
// returns the complete lines among them, with the offset they start at.
// A torn trailing line that the server is still appending stays unread;
// the offset must never advance past a partial record or its remainder
// would parse as garbage next sweep and the event would be lost. A file
// smaller than its recorded offset was rotated or truncated, so
// ingestion restarts from the top.
func (w *Sweeper) readNew(
	ctx context.Context, session pathfind.Session, server *domain.GameServer, path string,
) (string, int64, error) {
	offset, err := w.st.FileOffset(ctx, server, path)
	if err != nil {
		return "", 0, err
	}

	data, err := session.Read(ctx, path)
	if err != nil {
		return "", 0, fmt.Errorf("ingest: reading %s: %w", path, err)
	}

	if int64(len(data)) < offset {
		w.logger.Info("ingest: file rotated, restarting from top",
			"guild", server.GuildID,
			"server", server.ServerID,
			"path", path,
		)

		offset = 0
	}

	tail := data[offset:]

	nl := bytes.LastIndexByte(tail, '\n')
	if nl < 0 {
		return "", offset, nil
	}

	return string(tail[:nl+1]), offset, nil
}

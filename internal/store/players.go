package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/deadside-tools/deadside-ingest/internal/domain"
)

const (
	sqlBumpKills = `INSERT INTO players (guild_id, server_id, name, kills, deaths, kd_ratio, updated_at)
		VALUES (?, ?, ?, 1, 0, 1.0, ?)
		ON CONFLICT(guild_id, server_id, name) DO UPDATE SET
		 kills = kills + 1,
		 kd_ratio = CASE WHEN deaths > 0 THEN CAST(kills + 1 AS REAL) / deaths ELSE kills + 1 END,
		 updated_at = excluded.updated_at`

	sqlBumpDeaths = `INSERT INTO players (guild_id, server_id, name, kills, deaths, kd_ratio, updated_at)
		VALUES (?, ?, ?, 0, 1, 0.0, ?)
		ON CONFLICT(guild_id, server_id, name) DO UPDATE SET
		 deaths = deaths + 1,
		 kd_ratio = CAST(kills AS REAL) / (deaths + 1),
		 updated_at = excluded.updated_at`

	sqlSelectPlayers = `SELECT guild_id, server_id, name, kills, deaths, kd_ratio FROM players`
)

// RecordDeathEvent applies one parsed death event to the aggregates in a
// single transaction: the victim's death always counts, the killer's
// kill only when the event is not a suicide.
func (s *Store) RecordDeathEvent(ctx context.Context, server *domain.GameServer, ev *domain.DeathEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: beginning stats transaction: %w", err)
	}
	defer tx.Rollback()

	if err := applyDeathEvent(ctx, tx, server, ev, s.nowFunc().UnixNano()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: committing stats transaction: %w", err)
	}

	return nil
}

// RecordDeathEventsAt applies a file's parsed events and its new read
// offset in one transaction. Everything commits together or nothing
// does, so a failed sweep re-reads the same lines next time instead of
// double counting the ones that had already landed.
func (s *Store) RecordDeathEventsAt(
	ctx context.Context, server *domain.GameServer, path string, events []domain.DeathEvent, offset int64,
) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: beginning stats transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.nowFunc().UnixNano()

	for i := range events {
		if err := applyDeathEvent(ctx, tx, server, &events[i], now); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, sqlUpsertOffset,
		server.GuildID, server.ServerID, path, offset, now); err != nil {
		return fmt.Errorf("store: saving offset for %s: %w", path, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: committing stats transaction: %w", err)
	}

	return nil
}

// applyDeathEvent bumps the victim's deaths and, for non-suicides, the
// killer's kills inside the caller's transaction.
func applyDeathEvent(ctx context.Context, tx *sql.Tx, server *domain.GameServer, ev *domain.DeathEvent, now int64) error {
	if _, err := tx.ExecContext(ctx, sqlBumpDeaths,
		server.GuildID, server.ServerID, ev.Victim, now); err != nil {
		return fmt.Errorf("store: recording death for %s: %w", ev.Victim, err)
	}

	if !ev.Suicide {
		if _, err := tx.ExecContext(ctx, sqlBumpKills,
			server.GuildID, server.ServerID, ev.Killer, now); err != nil {
			return fmt.Errorf("store: recording kill for %s: %w", ev.Killer, err)
		}
	}

	return nil
}

// TopPlayers returns a guild's players ordered by kill count. When
// serverID is non-empty the result is limited to that server.
func (s *Store) TopPlayers(ctx context.Context, guildID, serverID string, limit int) ([]*domain.PlayerStats, error) {
	query := sqlSelectPlayers + ` WHERE guild_id = ?`
	args := []any{guildID}

	if serverID != "" {
		query += ` AND server_id = ?`
		args = append(args, serverID)
	}

	query += ` ORDER BY kills DESC, name LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: querying top players for guild %s: %w", guildID, err)
	}
	defer rows.Close()

	var players []*domain.PlayerStats

	for rows.Next() {
		var p domain.PlayerStats
		if err := rows.Scan(&p.GuildID, &p.ServerID, &p.Name, &p.Kills, &p.Deaths, &p.KDRatio); err != nil {
			return nil, fmt.Errorf("store: scanning player row: %w", err)
		}

		players = append(players, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterating player rows: %w", err)
	}

	return players, nil
}

// ValidateStats repairs a guild's aggregates: negative counters are
// clamped to zero and every K/D ratio is recomputed. Returns the number
// of rows changed.
func (s *Store) ValidateStats(ctx context.Context, guildID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE players SET
		 kills = MAX(kills, 0),
		 deaths = MAX(deaths, 0),
		 kd_ratio = CASE WHEN MAX(deaths, 0) > 0
		   THEN CAST(MAX(kills, 0) AS REAL) / MAX(deaths, 0)
		   ELSE MAX(kills, 0) END,
		 updated_at = ?
		WHERE guild_id = ?
		  AND (kills < 0 OR deaths < 0
		       OR kd_ratio != CASE WHEN deaths > 0 THEN CAST(kills AS REAL) / deaths ELSE kills END)`,
		s.nowFunc().UnixNano(), guildID)
	if err != nil {
		return 0, fmt.Errorf("store: validating stats for guild %s: %w", guildID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("store: counting validated rows: %w", err)
	}

	return n, nil
}

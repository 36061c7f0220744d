package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/deadside-tools/deadside-ingest/internal/domain"
)

const (
	sqlGetOffset = `SELECT byte_offset FROM file_offsets
		WHERE guild_id = ? AND server_id = ? AND path = ?`

	sqlUpsertOffset = `INSERT INTO file_offsets (guild_id, server_id, path, byte_offset, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(guild_id, server_id, path) DO UPDATE SET
		 byte_offset = excluded.byte_offset,
		 updated_at = excluded.updated_at`
)

// FileOffset returns how many bytes of a remote file have already been
// ingested, or 0 for a file never seen before.
func (s *Store) FileOffset(ctx context.Context, server *domain.GameServer, path string) (int64, error) {
	var offset int64

	err := s.db.QueryRowContext(ctx, sqlGetOffset,
		server.GuildID, server.ServerID, path).Scan(&offset)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("store: getting offset for %s: %w", path, err)
	}

	return offset, nil
}

// SetFileOffset records ingestion progress for a remote file.
func (s *Store) SetFileOffset(ctx context.Context, server *domain.GameServer, path string, offset int64) error {
	_, err := s.db.ExecContext(ctx, sqlUpsertOffset,
		server.GuildID, server.ServerID, path, offset, s.nowFunc().UnixNano())
	if err != nil {
		return fmt.Errorf("store: saving offset for %s: %w", path, err)
	}

	return nil
}

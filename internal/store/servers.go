package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/deadside-tools/deadside-ingest/internal/domain"
)

// ErrServerNotFound is returned when no server matches a tenant key.
var ErrServerNotFound = errors.New("store: server not found")

const (
	sqlSelectServer = `SELECT guild_id, server_id, display_name, host, sftp_host,
		sftp_port, username, password, deathlog_dir, log_dir, read_only
		FROM servers`

	sqlUpsertServer = `INSERT INTO servers
		(guild_id, server_id, display_name, host, sftp_host, sftp_port,
		 username, password, deathlog_dir, log_dir, read_only, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(guild_id, server_id) DO UPDATE SET
		 display_name = excluded.display_name,
		 host = excluded.host,
		 sftp_host = excluded.sftp_host,
		 sftp_port = excluded.sftp_port,
		 username = excluded.username,
		 password = excluded.password,
		 deathlog_dir = excluded.deathlog_dir,
		 log_dir = excluded.log_dir,
		 read_only = excluded.read_only,
		 updated_at = excluded.updated_at`

	sqlDeleteServer = `DELETE FROM servers WHERE guild_id = ? AND server_id = ?`

	sqlListGuilds = `SELECT DISTINCT guild_id FROM servers ORDER BY guild_id`
)

// FindServer returns one server by tenant key, or ErrServerNotFound.
func (s *Store) FindServer(ctx context.Context, guildID, serverID string) (*domain.GameServer, error) {
	row := s.db.QueryRowContext(ctx,
		sqlSelectServer+` WHERE guild_id = ? AND server_id = ?`, guildID, serverID)

	server, err := scanServer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrServerNotFound, guildID, serverID)
	}

	if err != nil {
		return nil, fmt.Errorf("store: finding server %s/%s: %w", guildID, serverID, err)
	}

	return server, nil
}

// SaveServer inserts or updates a server record.
func (s *Store) SaveServer(ctx context.Context, server *domain.GameServer) error {
	now := s.nowFunc().UnixNano()

	_, err := s.db.ExecContext(ctx, sqlUpsertServer,
		server.GuildID, server.ServerID, server.DisplayName,
		server.Host, nullString(server.SftpHost), server.SftpPort,
		server.Username, server.Password,
		server.DeathlogDirectory, server.LogDirectory,
		boolToInt(server.ReadOnly), now, now,
	)
	if err != nil {
		return fmt.Errorf("store: saving server %s/%s: %w", server.GuildID, server.ServerID, err)
	}

	return nil
}

// DeleteServer removes a server record. Deleting an absent server is not
// an error.
func (s *Store) DeleteServer(ctx context.Context, guildID, serverID string) error {
	_, err := s.db.ExecContext(ctx, sqlDeleteServer, guildID, serverID)
	if err != nil {
		return fmt.Errorf("store: deleting server %s/%s: %w", guildID, serverID, err)
	}

	return nil
}

// FindAllByGuild returns every server registered to a guild, ordered by
// server identifier.
func (s *Store) FindAllByGuild(ctx context.Context, guildID string) ([]*domain.GameServer, error) {
	rows, err := s.db.QueryContext(ctx,
		sqlSelectServer+` WHERE guild_id = ? ORDER BY server_id`, guildID)
	if err != nil {
		return nil, fmt.Errorf("store: listing servers for guild %s: %w", guildID, err)
	}
	defer rows.Close()

	var servers []*domain.GameServer

	for rows.Next() {
		server, err := scanServer(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scanning server row: %w", err)
		}

		servers = append(servers, server)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterating server rows: %w", err)
	}

	return servers, nil
}

// ListGuildIDs returns every guild with at least one registered server.
func (s *Store) ListGuildIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, sqlListGuilds)
	if err != nil {
		return nil, fmt.Errorf("store: listing guilds: %w", err)
	}
	defer rows.Close()

	var guilds []string

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("store: scanning guild row: %w", err)
		}

		guilds = append(guilds, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterating guild rows: %w", err)
	}

	return guilds, nil
}

// scanner abstracts sql.Row and sql.Rows for scanServer.
type scanner interface {
	Scan(dest ...any) error
}

func scanServer(row scanner) (*domain.GameServer, error) {
	var (
		server   domain.GameServer
		sftpHost sql.NullString
		readOnly int
	)

	err := row.Scan(
		&server.GuildID, &server.ServerID, &server.DisplayName,
		&server.Host, &sftpHost, &server.SftpPort,
		&server.Username, &server.Password,
		&server.DeathlogDirectory, &server.LogDirectory, &readOnly,
	)
	if err != nil {
		return nil, err
	}

	server.SftpHost = sftpHost.String
	server.ReadOnly = readOnly != 0

	return &server, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}

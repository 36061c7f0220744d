// Package domain holds the core types shared across the ingestion
// pipeline: server configurations, telemetry events, and player stats.
package domain

import "strings"

// Category identifies the kind of remote artifact a path points at.
type Category int

const (
	// DeathEvents is the rotating death-event CSV directory.
	DeathEvents Category = iota
	// EngineLog is the directory holding the rolling Deadside.log.
	EngineLog
)

// String returns the category name used in cache keys and log output.
func (c Category) String() string {
	switch c {
	case DeathEvents:
		return "death_events"
	case EngineLog:
		return "engine_log"
	default:
		return "unknown"
	}
}

// GameServer is one monitored Deadside server, owned by a single guild.
// (GuildID, ServerID) is the tenant key: cache entries and configuration
// writes are never shared across tenants, even when two guilds register
// servers with identical names or hosts.
type GameServer struct {
	GuildID     string
	ServerID    string
	DisplayName string

	Host     string
	SftpHost string // optional override; takes precedence over Host
	SftpPort int
	Username string
	Password string

	// DeathlogDirectory and LogDirectory are the currently configured
	// remote paths. The path resolver may rewrite them in memory;
	// persisting the change is the caller's job.
	DeathlogDirectory string
	LogDirectory      string

	// ReadOnly marks an isolation-restricted server: discovery may run,
	// but the resolver must never mutate its configured paths.
	ReadOnly bool
}

// EffectiveHost returns the host used for candidate path construction,
// preferring the explicit SFTP override.
func (s *GameServer) EffectiveHost() string {
	if s.SftpHost != "" {
		return s.SftpHost
	}

	return s.Host
}

// ServerToken returns the server name segment used in candidate paths:
// the explicit server identifier, or the display name with runs of
// whitespace collapsed to underscores.
func (s *GameServer) ServerToken() string {
	if s.ServerID != "" {
		return s.ServerID
	}

	return strings.Join(strings.Fields(s.DisplayName), "_")
}

// DirectoryFor returns the configured directory for a category.
func (s *GameServer) DirectoryFor(cat Category) string {
	if cat == EngineLog {
		return s.LogDirectory
	}

	return s.DeathlogDirectory
}

// SetDirectoryFor updates the configured directory for a category.
func (s *GameServer) SetDirectoryFor(cat Category, path string) {
	if cat == EngineLog {
		s.LogDirectory = path
		return
	}

	s.DeathlogDirectory = path
}

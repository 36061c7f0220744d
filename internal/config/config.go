// Package config implements TOML configuration loading and validation
// for deadside-ingest. Defaults apply first, the config file overrides
// them, and CLI flags override the file.
package config

// Config is the top-level configuration structure parsed from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	SFTP     SFTPConfig     `toml:"sftp"`
	Sweep    SweepConfig    `toml:"sweep"`
	Logging  LoggingConfig  `toml:"logging"`
}

// DatabaseConfig locates the SQLite database file.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// SFTPConfig controls the transport used to reach game hosts.
type SFTPConfig struct {
	DialTimeout string `toml:"dial_timeout"`
}

// SweepConfig controls the ingestion loop: how often servers are swept,
// how many are swept in parallel, and the bounds of the fallback path
// search when configured directories go stale.
type SweepConfig struct {
	PollInterval   string `toml:"poll_interval"`
	Workers        int    `toml:"workers"`
	SearchMaxDepth int    `toml:"search_max_depth"`
	SearchMaxFiles int    `toml:"search_max_files"`
}

// LoggingConfig controls log output behavior.
type LoggingConfig struct {
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

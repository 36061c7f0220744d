package config

// Default values for configuration options, chosen to work for a small
// deployment without any config file.
const (
	defaultDatabasePath   = "deadside-ingest.db"
	defaultDialTimeout    = "15s"
	defaultPollInterval   = "5m"
	defaultWorkers        = 4
	defaultSearchMaxDepth = 3
	defaultSearchMaxFiles = 500
	defaultLogLevel       = "info"
	defaultLogFormat      = "auto"
)

// DefaultConfig returns a Config populated with all default values. It is
// the starting point for TOML decoding, so unset fields retain defaults,
// and the fallback when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Path: defaultDatabasePath},
		SFTP:     SFTPConfig{DialTimeout: defaultDialTimeout},
		Sweep: SweepConfig{
			PollInterval:   defaultPollInterval,
			Workers:        defaultWorkers,
			SearchMaxDepth: defaultSearchMaxDepth,
			SearchMaxFiles: defaultSearchMaxFiles,
		},
		Logging: LoggingConfig{
			LogLevel:  defaultLogLevel,
			LogFormat: defaultLogFormat,
		},
	}
}

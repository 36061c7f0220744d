package config

import (
	"errors"
	"fmt"
	"time"
)

// Validation range constants.
const (
	minWorkers      = 1
	maxWorkers      = 32
	minSearchDepth  = 1
	maxSearchDepth  = 10
	minSearchFiles  = 1
	minPollInterval = 10 * time.Second
	minDialTimeout  = 1 * time.Second
)

// Validate checks all configuration values and returns all errors found.
// It accumulates every error rather than stopping at the first, so users
// see a complete report and can fix all issues in one pass.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Database.Path == "" {
		errs = append(errs, errors.New("database.path: must not be empty"))
	}

	errs = append(errs, validateSFTP(&cfg.SFTP)...)
	errs = append(errs, validateSweep(&cfg.Sweep)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)

	return errors.Join(errs...)
}

func validateSFTP(s *SFTPConfig) []error {
	var errs []error

	if d, err := time.ParseDuration(s.DialTimeout); err != nil {
		errs = append(errs, fmt.Errorf("sftp.dial_timeout: %w", err))
	} else if d < minDialTimeout {
		errs = append(errs, fmt.Errorf("sftp.dial_timeout: must be at least %s, got %s", minDialTimeout, d))
	}

	return errs
}

func validateSweep(s *SweepConfig) []error {
	var errs []error

	if d, err := time.ParseDuration(s.PollInterval); err != nil {
		errs = append(errs, fmt.Errorf("sweep.poll_interval: %w", err))
	} else if d < minPollInterval {
		errs = append(errs, fmt.Errorf("sweep.poll_interval: must be at least %s, got %s", minPollInterval, d))
	}

	if s.Workers < minWorkers || s.Workers > maxWorkers {
		errs = append(errs, fmt.Errorf("sweep.workers: must be between %d and %d, got %d",
			minWorkers, maxWorkers, s.Workers))
	}

	if s.SearchMaxDepth < minSearchDepth || s.SearchMaxDepth > maxSearchDepth {
		errs = append(errs, fmt.Errorf("sweep.search_max_depth: must be between %d and %d, got %d",
			minSearchDepth, maxSearchDepth, s.SearchMaxDepth))
	}

	if s.SearchMaxFiles < minSearchFiles {
		errs = append(errs, fmt.Errorf("sweep.search_max_files: must be at least %d, got %d",
			minSearchFiles, s.SearchMaxFiles))
	}

	return errs
}

func validateLogging(l *LoggingConfig) []error {
	var errs []error

	switch l.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.log_level: must be debug, info, warn, or error, got %q", l.LogLevel))
	}

	switch l.LogFormat {
	case "auto", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.log_format: must be auto, text, or json, got %q", l.LogFormat))
	}

	return errs
}

// PollInterval returns the parsed sweep poll interval. Call after
// Validate; a malformed value falls back to the default.
func (c *Config) PollInterval() time.Duration {
	d, err := time.ParseDuration(c.Sweep.PollInterval)
	if err != nil {
		d, _ = time.ParseDuration(defaultPollInterval)
	}

	return d
}

// DialTimeout returns the parsed SFTP dial timeout. Call after Validate;
// a malformed value falls back to the default.
func (c *Config) DialTimeout() time.Duration {
	d, err := time.ParseDuration(c.SFTP.DialTimeout)
	if err != nil {
		d, _ = time.ParseDuration(defaultDialTimeout)
	}

	return d
}

package ingest

import (
	"regexp"
	"strings"
	"time"

	"github.com/deadside-tools/deadside-ingest/internal/domain"
)

// Engine-log line patterns. The engine prefixes most lines with
// [YYYY.MM.DD-HH.MM.SS:mmm][frame]; the prefix is optional here because
// the first lines of a fresh log omit it.
var (
	timestampRe  = regexp.MustCompile(`^\[(\d{4}\.\d{2}\.\d{2}-\d{2}\.\d{2}\.\d{2}):\d+\]\[\s*\d+\]`)
	joinRe       = regexp.MustCompile(`LogNet: Join succeeded: (.+)$`)
	disconnectRe = regexp.MustCompile(`LogNet: Player (.+?) disconnected`)
	restartRe    = regexp.MustCompile(`^Log file open`)
)

// logTimestampLayout matches the engine's bracketed timestamp.
const logTimestampLayout = "2006.01.02-15.04.05"

// ClassifyLogLine classifies one engine-log line. ok is false for the
// many line kinds ingestion does not care about.
func ClassifyLogLine(line string) (domain.LogEvent, bool) {
	line = strings.TrimRight(line, "\r")
	if line == "" {
		return domain.LogEvent{}, false
	}

	ev := domain.LogEvent{}

	if m := timestampRe.FindStringSubmatch(line); m != nil {
		if ts, err := time.Parse(logTimestampLayout, m[1]); err == nil {
			ev.Timestamp = ts
		}

		line = line[len(m[0]):]
	}

	if restartRe.MatchString(line) {
		ev.Kind = domain.LogEventRestart
		return ev, true
	}

	if m := joinRe.FindStringSubmatch(line); m != nil {
		ev.Kind = domain.LogEventJoin
		ev.Player = NormalizePlayerName(m[1])

		return ev, true
	}

	if m := disconnectRe.FindStringSubmatch(line); m != nil {
		ev.Kind = domain.LogEventDisconnect
		ev.Player = NormalizePlayerName(m[1])

		return ev, true
	}

	return domain.LogEvent{}, false
}

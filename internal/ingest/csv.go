// Package ingest consumes the discovery entry points: it reads newly
// appended death-event CSV lines and engine-log lines from remote
// servers and folds them into the per-player aggregates.
package ingest

import (
	"errors"
	"strconv"
	"strings"

	"github.com/deadside-tools/deadside-ingest/internal/domain"
)

// ErrMalformedLine marks a death-event line that cannot be parsed.
// Callers skip such lines; one bad row never stops a file.
var ErrMalformedLine = errors.New("ingest: malformed death-event line")

// minDeathEventFields is killer, victim, weapon. Distance and any
// trailing columns are optional and vary across server versions.
const minDeathEventFields = 3

// ParseDeathEvent parses one comma-separated death-event line:
//
//	killer,victim,weapon[,distance[,...]]
//
// Player names are normalized before use so stat rows aggregate across
// encoding variants of the same name.
func ParseDeathEvent(line string) (domain.DeathEvent, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return domain.DeathEvent{}, ErrMalformedLine
	}

	parts := strings.Split(line, ",")
	if len(parts) < minDeathEventFields {
		return domain.DeathEvent{}, ErrMalformedLine
	}

	killer := NormalizePlayerName(parts[0])
	victim := NormalizePlayerName(parts[1])

	if killer == "" || victim == "" {
		return domain.DeathEvent{}, ErrMalformedLine
	}

	ev := domain.DeathEvent{
		Killer:  killer,
		Victim:  victim,
		Weapon:  strings.TrimSpace(parts[2]),
		Suicide: killer == victim,
	}

	if ev.Weapon == "" {
		ev.Weapon = "Unknown"
	}

	if len(parts) > 3 {
		if d, err := strconv.Atoi(strings.TrimSpace(parts[3])); err == nil && d >= 0 {
			ev.Distance = d
		}
	}

	return ev, nil
}

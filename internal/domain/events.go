package domain

import "time"

// DeathEvent is one parsed line from a death-event CSV file.
type DeathEvent struct {
	Killer   string
	Victim   string
	Weapon   string
	Distance int // meters; 0 when the column is absent

	// Suicide is true when the killer and victim are the same player.
	// Suicides count a death but never a kill.
	Suicide bool
}

// LogEventKind classifies an engine-log line.
type LogEventKind int

const (
	// LogEventUnknown marks lines the classifier does not recognize.
	LogEventUnknown LogEventKind = iota
	// LogEventJoin is a player connecting to the server.
	LogEventJoin
	// LogEventDisconnect is a player leaving the server.
	LogEventDisconnect
	// LogEventRestart is a server lifecycle restart marker.
	LogEventRestart
)

// String returns the kind name for log output.
func (k LogEventKind) String() string {
	switch k {
	case LogEventJoin:
		return "join"
	case LogEventDisconnect:
		return "disconnect"
	case LogEventRestart:
		return "restart"
	default:
		return "unknown"
	}
}

// LogEvent is one classified engine-log line.
type LogEvent struct {
	Kind      LogEventKind
	Player    string // empty for lifecycle events
	Timestamp time.Time
}

package ingest

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizePlayerName canonicalizes a player name for aggregation:
// Unicode NFC composition plus whitespace-run collapse. Game clients
// submit the same name in decomposed and composed forms depending on
// platform, and stats must land on one row.
func NormalizePlayerName(name string) string {
	name = norm.NFC.String(name)

	return strings.Join(strings.Fields(name), " ")
}

// Package pathfind locates death-event CSV directories and the engine
// log on a remote game host when the configured path is stale or the
// remote layout has drifted. It layers a tenant-scoped cache, ordered
// candidate-path generation, per-path validation, and a bounded
// recursive fallback search behind two discovery entry points.
//
// Every transport failure inside this package is soft: a candidate that
// cannot be probed is treated as invalid and resolution moves on.
// Nothing here is fatal to an ingestion sweep.
package pathfind

import (
	"context"

	"github.com/deadside-tools/deadside-ingest/internal/domain"
)

// Entry is one remote directory entry.
type Entry struct {
	Name  string
	IsDir bool
}

// Session is a live connection to one remote host. Sessions are
// short-lived: each validation or directory probe opens its own session
// and closes it on every exit path. No pooling is assumed here; callers
// needing throughput pool at the transport layer.
type Session interface {
	// List returns the immediate entries of a directory (non-recursive).
	List(ctx context.Context, path string) ([]Entry, error)
	// Read returns the full contents of a remote file.
	Read(ctx context.Context, path string) ([]byte, error)
	Close() error
}

// RemoteFS opens sessions to a server's host. Defined at the consumer
// per Go convention "accept interfaces, return structs"; the sftpfs
// package provides the production implementation.
type RemoteFS interface {
	Connect(ctx context.Context, server *domain.GameServer) (Session, error)
}

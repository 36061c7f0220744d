// Package sftpfs implements pathfind.RemoteFS over SFTP. Game-panel
// hosts expose telemetry over plain password-authenticated SFTP, so the
// client dials per call, authenticates with the server record's
// credentials, and hands back a short-lived session the caller must
// close. No connection pooling happens here.
package sftpfs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/deadside-tools/deadside-ingest/internal/domain"
	"github.com/deadside-tools/deadside-ingest/internal/pathfind"
)

// defaultPort is the standard SSH/SFTP port used when a server record
// carries no explicit port.
const defaultPort = 22

// requestTimeout bounds each List or Read when the caller's context
// carries no deadline. A host that hangs after the handshake would
// otherwise stall a sweep worker indefinitely; telemetry files are
// small, so this is a hang bound, not a throughput budget.
const requestTimeout = 2 * time.Minute

// Client dials SFTP sessions for game servers.
type Client struct {
	dialTimeout time.Duration
	logger      *slog.Logger
}

// New creates an SFTP client. dialTimeout bounds both the TCP dial and
// the SSH handshake so a dead host never hangs a resolution call.
func New(dialTimeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{dialTimeout: dialTimeout, logger: logger}
}

// Connect opens a fresh SSH connection and SFTP subsystem to the
// server's host. The returned session owns both and releases them on
// Close.
func (c *Client) Connect(ctx context.Context, server *domain.GameServer) (pathfind.Session, error) {
	addr := address(server)

	cfg := &ssh.ClientConfig{
		User:    server.Username,
		Auth:    []ssh.AuthMethod{ssh.Password(server.Password)},
		Timeout: c.dialTimeout,
		// Game panels rotate hosts and regenerate host keys on migration;
		// operators have no channel to pre-distribute fingerprints.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec
	}

	dialer := net.Dialer{Timeout: c.dialTimeout}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("sftpfs: dialing %s: %w", addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("sftpfs: ssh handshake with %s: %w", addr, err)
	}

	sshClient := ssh.NewClient(sshConn, chans, reqs)

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, fmt.Errorf("sftpfs: opening sftp subsystem on %s: %w", addr, err)
	}

	c.logger.Debug("sftpfs: session opened", "addr", addr, "user", server.Username)

	return &session{sftp: sftpClient, ssh: sshClient, conn: conn}, nil
}

// address builds the dial address from the server record: the SFTP host
// override wins, an embedded port wins over the configured one, and the
// standard port is the final fallback.
func address(server *domain.GameServer) string {
	host := server.EffectiveHost()

	// Hosts copied out of panel UIs sometimes already carry a port.
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}

	port := server.SftpPort
	if port == 0 {
		port = defaultPort
	}

	return net.JoinHostPort(host, strconv.Itoa(port))
}

// session wraps one SFTP subsystem, its underlying SSH connection, and
// the raw TCP connection deadlines are set on.
type session struct {
	sftp *sftp.Client
	ssh  *ssh.Client
	conn net.Conn
}

// deadline picks the I/O deadline for one request: the context's
// deadline when it has one, otherwise the request timeout.
func (s *session) deadline(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}

	return time.Now().Add(requestTimeout)
}

// List returns the immediate entries of a remote directory.
func (s *session) List(ctx context.Context, path string) ([]pathfind.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.conn.SetDeadline(s.deadline(ctx))
	defer s.conn.SetDeadline(time.Time{})

	infos, err := s.sftp.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("sftpfs: listing %s: %w", path, err)
	}

	entries := make([]pathfind.Entry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, pathfind.Entry{
			Name:  info.Name(),
			IsDir: info.IsDir(),
		})
	}

	return entries, nil
}

// Read returns the full contents of a remote file.
func (s *session) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.conn.SetDeadline(s.deadline(ctx))
	defer s.conn.SetDeadline(time.Time{})

	f, err := s.sftp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sftpfs: opening %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("sftpfs: reading %s: %w", path, err)
	}

	return data, nil
}

// Close releases the SFTP subsystem and the SSH connection.
func (s *session) Close() error {
	sftpErr := s.sftp.Close()
	sshErr := s.ssh.Close()

	if sftpErr != nil {
		return sftpErr
	}

	return sshErr
}

package sftpfs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/deadside-tools/deadside-ingest/internal/domain"
)

func TestAddress(t *testing.T) {
	tests := []struct {
		name   string
		server domain.GameServer
		want   string
	}{
		{
			name:   "default port",
			server: domain.GameServer{Host: "play.example.net"},
			want:   "play.example.net:22",
		},
		{
			name:   "explicit port",
			server: domain.GameServer{Host: "play.example.net", SftpPort: 8822},
			want:   "play.example.net:8822",
		},
		{
			name:   "sftp host override wins",
			server: domain.GameServer{Host: "public.example.net", SftpHost: "sftp.example.net", SftpPort: 2022},
			want:   "sftp.example.net:2022",
		},
		{
			name:   "embedded port preserved",
			server: domain.GameServer{Host: "play.example.net:2222", SftpPort: 8822},
			want:   "play.example.net:2222",
		},
		{
			name:   "ipv6 host",
			server: domain.GameServer{Host: "2001:db8::1", SftpPort: 22},
			want:   "[2001:db8::1]:22",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, address(&tt.server))
		})
	}
}

func TestSessionDeadline_ContextDeadlineWins(t *testing.T) {
	s := &session{}

	want := time.Now().Add(5 * time.Second)
	ctx, cancel := context.WithDeadline(context.Background(), want)
	defer cancel()

	assert.Equal(t, want, s.deadline(ctx))
}

func TestSessionDeadline_DefaultsToRequestTimeout(t *testing.T) {
	s := &session{}

	got := s.deadline(context.Background())
	assert.WithinDuration(t, time.Now().Add(requestTimeout), got, time.Second)
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deadside-tools/deadside-ingest/internal/domain"
)

func newFixPathsCmd() *cobra.Command {
	var (
		guildID string
		all     bool
	)

	cmd := &cobra.Command{
		Use:   "fix-paths [server-id]",
		Short: "Re-resolve and persist stale telemetry paths",
		Long: `Probe each server's configured death-event and engine-log paths and
rewrite the ones that have drifted. Read-only servers are probed but
never rewritten. With a server id, fixes one server; with --guild, every
server of that guild; with --all, everything registered.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && guildID == "" && !all {
				return fmt.Errorf("fix-paths: pass a server id, --guild, or --all")
			}

			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.Close()

			servers, err := selectServers(cmd.Context(), a, guildID, all, args)
			if err != nil {
				return err
			}

			fixed := 0

			for _, server := range servers {
				if !a.res.FixServerPaths(cmd.Context(), server) {
					continue
				}

				// The resolver only rewrites in memory; persist here.
				if err := a.store.SaveServer(cmd.Context(), server); err != nil {
					return fmt.Errorf("persisting fixed paths for %s/%s: %w",
						server.GuildID, server.ServerID, err)
				}

				fixed++
				fmt.Printf("Fixed %s/%s\n", server.GuildID, server.ServerID)
			}

			fmt.Printf("%d of %d servers updated\n", fixed, len(servers))

			return nil
		},
	}

	cmd.Flags().StringVar(&guildID, "guild", "", "limit to one guild")
	cmd.Flags().BoolVar(&all, "all", false, "fix every registered server")

	return cmd
}

// selectServers resolves the fix-paths target set from the flag and
// argument combination.
func selectServers(ctx context.Context, a *app, guildID string, all bool, args []string) ([]*domain.GameServer, error) {
	switch {
	case len(args) == 1:
		if guildID == "" {
			return nil, fmt.Errorf("fix-paths: --guild is required with a server id")
		}

		server, err := a.store.FindServer(ctx, guildID, args[0])
		if err != nil {
			return nil, err
		}

		return []*domain.GameServer{server}, nil

	case guildID != "":
		return a.store.FindAllByGuild(ctx, guildID)

	case all:
		guilds, err := a.store.ListGuildIDs(ctx)
		if err != nil {
			return nil, err
		}

		var servers []*domain.GameServer

		for _, g := range guilds {
			guildServers, err := a.store.FindAllByGuild(ctx, g)
			if err != nil {
				return nil, err
			}

			servers = append(servers, guildServers...)
		}

		return servers, nil

	default:
		return nil, fmt.Errorf("fix-paths: pass a server id, --guild, or --all")
	}
}

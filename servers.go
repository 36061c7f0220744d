package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/deadside-tools/deadside-ingest/internal/domain"
)

func newServersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "servers",
		Short: "Manage registered game servers",
	}

	cmd.AddCommand(newServersAddCmd())
	cmd.AddCommand(newServersListCmd())
	cmd.AddCommand(newServersShowCmd())
	cmd.AddCommand(newServersRemoveCmd())

	return cmd
}

func newServersAddCmd() *cobra.Command {
	server := &domain.GameServer{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a game server for a guild",
		Long: `Register a game server. The same command updates an existing
registration; (guild, server id) is the unique key.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if server.GuildID == "" || server.ServerID == "" {
				return fmt.Errorf("servers add: --guild and --id are required")
			}

			if server.Host == "" {
				return fmt.Errorf("servers add: --host is required")
			}

			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.SaveServer(cmd.Context(), server); err != nil {
				return fmt.Errorf("saving server: %w", err)
			}

			fmt.Printf("Registered %s/%s (%s)\n", server.GuildID, server.ServerID, server.Host)

			return nil
		},
	}

	cmd.Flags().StringVar(&server.GuildID, "guild", "", "owning guild ID")
	cmd.Flags().StringVar(&server.ServerID, "id", "", "server identifier")
	cmd.Flags().StringVar(&server.DisplayName, "name", "", "display name")
	cmd.Flags().StringVar(&server.Host, "host", "", "game host")
	cmd.Flags().StringVar(&server.SftpHost, "sftp-host", "", "SFTP host override")
	cmd.Flags().IntVar(&server.SftpPort, "port", 0, "SFTP port (default 22)")
	cmd.Flags().StringVar(&server.Username, "username", "", "SFTP username")
	cmd.Flags().StringVar(&server.Password, "password", "", "SFTP password")
	cmd.Flags().StringVar(&server.DeathlogDirectory, "deathlog-dir", "", "death-event CSV directory")
	cmd.Flags().StringVar(&server.LogDirectory, "log-dir", "", "engine log directory")
	cmd.Flags().BoolVar(&server.ReadOnly, "read-only", false, "never rewrite this server's configured paths")

	return cmd
}

func newServersListCmd() *cobra.Command {
	var guildID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a guild's registered servers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if guildID == "" {
				return fmt.Errorf("servers list: --guild is required")
			}

			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.Close()

			servers, err := a.store.FindAllByGuild(cmd.Context(), guildID)
			if err != nil {
				return fmt.Errorf("listing servers: %w", err)
			}

			if len(servers) == 0 {
				fmt.Println("No servers registered.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tHOST\tREAD-ONLY")

			for _, s := range servers {
				fmt.Fprintf(w, "%s\t%s\t%s\t%v\n", s.ServerID, s.DisplayName, s.EffectiveHost(), s.ReadOnly)
			}

			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&guildID, "guild", "", "owning guild ID")

	return cmd
}

func newServersShowCmd() *cobra.Command {
	var guildID string

	cmd := &cobra.Command{
		Use:   "show <server-id>",
		Short: "Show one server's configuration including telemetry paths",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if guildID == "" {
				return fmt.Errorf("servers show: --guild is required")
			}

			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.store.FindServer(cmd.Context(), guildID, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Server:        %s (%s)\n", s.ServerID, s.DisplayName)
			fmt.Printf("Host:          %s", s.Host)

			if s.SftpHost != "" {
				fmt.Printf(" (sftp: %s)", s.SftpHost)
			}

			fmt.Println()
			fmt.Printf("Deathlog path: %s\n", orUnset(s.DeathlogDirectory))
			fmt.Printf("Log path:      %s\n", orUnset(s.LogDirectory))
			fmt.Printf("Read-only:     %v\n", s.ReadOnly)

			return nil
		},
	}

	cmd.Flags().StringVar(&guildID, "guild", "", "owning guild ID")

	return cmd
}

func newServersRemoveCmd() *cobra.Command {
	var guildID string

	cmd := &cobra.Command{
		Use:   "remove <server-id>",
		Short: "Remove a registered server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if guildID == "" {
				return fmt.Errorf("servers remove: --guild is required")
			}

			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.DeleteServer(cmd.Context(), guildID, args[0]); err != nil {
				return fmt.Errorf("removing server: %w", err)
			}

			fmt.Printf("Removed %s/%s\n", guildID, args[0])

			return nil
		},
	}

	cmd.Flags().StringVar(&guildID, "guild", "", "owning guild ID")

	return cmd
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}

	return s
}

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

const defaultTopLimit = 10

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Query and maintain player statistics",
	}

	cmd.AddCommand(newStatsTopCmd())
	cmd.AddCommand(newStatsValidateCmd())

	return cmd
}

func newStatsTopCmd() *cobra.Command {
	var (
		guildID  string
		serverID string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show a guild's top players by kills",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if guildID == "" {
				return fmt.Errorf("stats top: --guild is required")
			}

			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.Close()

			players, err := a.store.TopPlayers(cmd.Context(), guildID, serverID, limit)
			if err != nil {
				return err
			}

			if len(players) == 0 {
				fmt.Println("No stats recorded yet.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PLAYER\tKILLS\tDEATHS\tK/D")

			for _, p := range players {
				fmt.Fprintf(w, "%s\t%d\t%d\t%.2f\n", p.Name, p.Kills, p.Deaths, p.KDRatio)
			}

			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&guildID, "guild", "", "owning guild ID")
	cmd.Flags().StringVar(&serverID, "server", "", "limit to one server")
	cmd.Flags().IntVar(&limit, "limit", defaultTopLimit, "number of players to show")

	return cmd
}

func newStatsValidateCmd() *cobra.Command {
	var guildID string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Repair corrupt stat rows for a guild",
		Long: `Clamp negative kill and death counters to zero and recompute every
K/D ratio for the guild's players. Reports how many rows changed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if guildID == "" {
				return fmt.Errorf("stats validate: --guild is required")
			}

			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.store.ValidateStats(cmd.Context(), guildID)
			if err != nil {
				return err
			}

			fmt.Printf("%d stat rows repaired\n", n)

			return nil
		},
	}

	cmd.Flags().StringVar(&guildID, "guild", "", "owning guild ID")

	return cmd
}

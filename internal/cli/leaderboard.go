package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aimastery/questd/internal/daemon"
)

func init() {
	leaderboardCmd.Flags().IntVarP(&leaderboardLimit, "limit", "n", 10, "Number of entries (1-100)")
	rootCmd.AddCommand(leaderboardCmd)
}

var leaderboardLimit int

var leaderboardCmd = &cobra.Command{
	Use:     "leaderboard",
	Aliases: []string{"top"},
	Short:   "Show the top users by XP",
	Args:    cobra.NoArgs,
	RunE:    runLeaderboard,
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	return withDaemon(func(d *daemon.Daemon) error {
		entries, err := d.Engagement.Leaderboard(context.Background(), leaderboardLimit)
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Fprintln(out, "No activity yet.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RANK\tUSER\tLEVEL\tXP\tSTREAK")
		for _, e := range entries {
			name := e.UserID
			switch {
			case e.DisplayName != "":
				name = e.DisplayName
			case e.Username != "":
				name = e.Username
			}
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\n", e.Rank, name, e.Level, e.XP, e.CurrentStreak)
		}
		return w.Flush()
	})
}

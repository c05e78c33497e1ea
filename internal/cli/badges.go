package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aimastery/questd/internal/daemon"
)

func init() {
	rootCmd.AddCommand(badgesCmd)
}

var badgesCmd = &cobra.Command{
	Use:   "badges <user-id>",
	Short: "List the badge catalog with a user's earned badges",
	Args:  cobra.ExactArgs(1),
	RunE:  runBadges,
}

func runBadges(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	return withDaemon(func(d *daemon.Daemon) error {
		badges, err := d.Engagement.Badges(context.Background(), args[0])
		if err != nil {
			return err
		}

		if len(badges) == 0 {
			fmt.Fprintln(out, "No badges installed. Run: questd seed")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tREQUIREMENT\tEARNED")
		for _, b := range badges {
			earned := "-"
			if b.Earned {
				earned = b.EarnedAt.UTC().Format("2006-01-02")
			}
			fmt.Fprintf(w, "%s\t%s\t%s >= %d\t%s\n",
				b.ID, b.Title, b.Requirement.Kind, b.Requirement.Threshold, earned)
		}
		return w.Flush()
	})
}

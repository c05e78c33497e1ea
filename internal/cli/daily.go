package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aimastery/questd/internal/daemon"
	"github.com/aimastery/questd/internal/domain"
)

func init() {
	dailyCmd.Flags().StringVar(&dailyDate, "date", "", "Day to select for, YYYY-MM-DD (default: today, UTC)")
	rootCmd.AddCommand(dailyCmd)
}

var dailyDate string

var dailyCmd = &cobra.Command{
	Use:   "daily <user-id>",
	Short: "Show the user's daily challenge",
	Args:  cobra.ExactArgs(1),
	RunE:  runDaily,
}

func runDaily(cmd *cobra.Command, args []string) error {
	day := domain.Today()
	if dailyDate != "" {
		var err error
		if day, err = domain.ParseDate(dailyDate); err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	return withDaemon(func(d *daemon.Daemon) error {
		dc, err := d.Engagement.DailyChallengeAt(context.Background(), args[0], day)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Daily challenge for %s\n", dc.Date)
		fmt.Fprintf(out, "  Quest:  %s (%s)\n", dc.Quest.Title, dc.Quest.ID)
		fmt.Fprintf(out, "  Reward: %d XP + %d bonus\n", dc.Quest.XPReward, dc.BonusXP)
		if dc.IsReplay {
			fmt.Fprintln(out, "  All quests completed; this one is a replay.")
		}
		if dc.HasActivityToday {
			fmt.Fprintln(out, "  Streak already extended today.")
		}
		return nil
	})
}

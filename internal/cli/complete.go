package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aimastery/questd/internal/app/engagement"
	"github.com/aimastery/questd/internal/daemon"
	"github.com/aimastery/questd/internal/domain"
)

func init() {
	completeCmd.Flags().Int64Var(&completeXP, "xp", -1, "Base XP to award (default: the quest's reward)")
	rootCmd.AddCommand(completeCmd)
}

var completeXP int64

var completeCmd = &cobra.Command{
	Use:   "complete <user-id> <quest-id>",
	Short: "Record a quest completion for a user",
	Long: `Complete a quest without a submission or evaluation. Useful for
backfills and manual corrections.`,
	Args: cobra.ExactArgs(2),
	RunE: runComplete,
}

func runComplete(cmd *cobra.Command, args []string) error {
	userID, questID := args[0], args[1]

	out := cmd.OutOrStdout()
	return withDaemon(func(d *daemon.Daemon) error {
		ctx := context.Background()
		quest, err := d.Engagement.Quest(ctx, questID)
		if err != nil {
			return err
		}

		base := quest.XPReward
		if completeXP >= 0 {
			base = completeXP
		}

		res, err := d.Engagement.CompleteQuest(ctx, engagement.CompletionRequest{
			UserID:     userID,
			QuestID:    quest.ID,
			BaseXP:     base,
			Submission: domain.Submission{Type: "manual"},
		})
		if err != nil {
			return err
		}

		if res.AlreadyCompleted {
			fmt.Fprintf(out, "%s already completed %q\n", userID, quest.Title)
			return nil
		}

		fmt.Fprintf(out, "%s completed %q\n", userID, quest.Title)
		fmt.Fprintf(out, "  XP earned:  %d (+%d streak bonus, x%.2f)\n", res.XPEarned, res.XPBonus, res.StreakMultiplier)
		fmt.Fprintf(out, "  Streak:     %d day(s)", res.NewStreak)
		if res.StreakLost {
			fmt.Fprint(out, " (previous streak lost)")
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  Level:      %d", res.NewLevel)
		if res.LeveledUp {
			fmt.Fprint(out, " (level up!)")
		}
		fmt.Fprintln(out)
		if len(res.NewBadges) > 0 {
			fmt.Fprintf(out, "  New badges: %s\n", strings.Join(res.NewBadges, ", "))
		}
		return nil
	})
}

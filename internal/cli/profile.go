package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aimastery/questd/internal/app/engagement"
	"github.com/aimastery/questd/internal/daemon"
)

func init() {
	profileCmd.Flags().StringVar(&profileUsername, "username", "", "Set the public username")
	profileCmd.Flags().StringVar(&profileDisplayName, "display-name", "", "Set the display name (requires --username)")
	rootCmd.AddCommand(profileCmd)
}

var (
	profileUsername    string
	profileDisplayName string
)

var profileCmd = &cobra.Command{
	Use:   "profile <user-id>",
	Short: "Show a user's level, XP and streak",
	Long: `Show a user's profile. With --username, first set the user's public
username and display name.`,
	Args: cobra.ExactArgs(1),
	RunE: runProfile,
}

func runProfile(cmd *cobra.Command, args []string) error {
	if profileDisplayName != "" && profileUsername == "" {
		return fmt.Errorf("--display-name requires --username")
	}

	return withDaemon(func(d *daemon.Daemon) error {
		ctx := context.Background()

		var (
			p   *engagement.ProfileView
			err error
		)
		if profileUsername != "" {
			p, err = d.Engagement.SetIdentity(ctx, engagement.IdentityRequest{
				UserID:      args[0],
				Username:    profileUsername,
				DisplayName: profileDisplayName,
			})
		} else {
			p, err = d.Engagement.Profile(ctx, args[0])
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		last := "never"
		if p.LastActivity != nil {
			last = p.LastActivity.String()
		}

		fmt.Fprintf(out, "User:        %s\n", p.UserID)
		if p.Username != "" {
			fmt.Fprintf(out, "Username:    %s\n", p.Username)
		}
		if p.DisplayName != "" {
			fmt.Fprintf(out, "Name:        %s\n", p.DisplayName)
		}
		if p.Level >= engagement.MaxLevel {
			fmt.Fprintf(out, "Level:       %d (max level)\n", p.Level)
			fmt.Fprintf(out, "XP:          %d\n", p.XP)
		} else {
			fmt.Fprintf(out, "Level:       %d (%.1f%% to next)\n", p.Level, p.LevelProgress)
			fmt.Fprintf(out, "XP:          %d (%d to level %d at %d)\n", p.XP, p.XPToNextLevel, p.Level+1, p.NextLevelXP)
		}
		fmt.Fprintf(out, "Streak:      %d (longest %d)\n", p.CurrentStreak, p.LongestStreak)
		fmt.Fprintf(out, "Last active: %s\n", last)
		fmt.Fprintf(out, "Completed:   %d quest(s)\n", p.QuestsCompleted)
		return nil
	})
}

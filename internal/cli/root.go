// Package cli implements the questd command-line interface using Cobra.
// The serve command runs the HTTP API; the rest operate on the local
// database directly.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aimastery/questd/internal/daemon"
)

var rootCmd = &cobra.Command{
	Use:   "questd",
	Short: "questd: quest progression and rewards engine",
	Long: `questd tracks learner progression through quests.
It awards XP with streak multipliers, levels users up, grants badges
and picks a deterministic daily challenge for every user.

Data lives in $QUESTD_HOME (default ~/.questd).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// withDaemon opens the configured database and services for a one-shot
// command and closes them afterwards.
func withDaemon(fn func(d *daemon.Daemon) error) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()
	return fn(d)
}

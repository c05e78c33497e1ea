package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/spf13/cobra"

	"github.com/aimastery/questd/internal/app/engagement"
	"github.com/aimastery/questd/internal/daemon"
	"github.com/aimastery/questd/internal/domain"
)

func init() {
	seedCmd.Flags().StringVar(&seedQuestFile, "quests", "", "TOML file of [[quests]] to install")
	rootCmd.AddCommand(seedCmd)
}

var seedQuestFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Install the badge catalog and optional quests",
	Long: `Install the default badge catalog. With --quests, also install the
quests listed in a TOML file:

  [[quests]]
  slug = "prompt-basics"
  title = "Prompt Basics"
  xp_reward = 50
  order_index = 1`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

// questEntry is one [[quests]] table. Published defaults to true.
type questEntry struct {
	ID          string `toml:"id"`
	Slug        string `toml:"slug"`
	Title       string `toml:"title"`
	Description string `toml:"description"`
	Difficulty  string `toml:"difficulty"`
	XPReward    int64  `toml:"xp_reward"`
	OrderIndex  int    `toml:"order_index"`
	Published   *bool  `toml:"published"`
}

type questFile struct {
	Quests []questEntry `toml:"quests"`
}

func runSeed(cmd *cobra.Command, args []string) error {
	var quests []domain.Quest
	if seedQuestFile != "" {
		var err error
		if quests, err = loadQuestFile(seedQuestFile); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	return withDaemon(func(d *daemon.Daemon) error {
		ctx := context.Background()
		badges := engagement.DefaultBadges()
		if err := d.Engagement.SeedBadges(ctx, badges); err != nil {
			return err
		}
		fmt.Fprintf(out, "Installed %d badges\n", len(badges))

		if len(quests) == 0 {
			return nil
		}
		if err := d.Engagement.SeedQuests(ctx, quests); err != nil {
			return err
		}
		fmt.Fprintf(out, "Installed %d quests from %s\n", len(quests), seedQuestFile)
		return nil
	})
}

// loadQuestFile parses a quest file. A missing slug is derived from the
// title; a missing id falls back to the slug, then to a random UUID that
// also serves as the slug.
func loadQuestFile(path string) ([]domain.Quest, error) {
	var f questFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	quests := make([]domain.Quest, 0, len(f.Quests))
	seen := make(map[string]bool, len(f.Quests))
	for i, e := range f.Quests {
		if strings.TrimSpace(e.Title) == "" {
			return nil, fmt.Errorf("%s: quest #%d has no title", path, i+1)
		}
		if e.XPReward < 0 {
			return nil, fmt.Errorf("%s: quest %q has negative xp_reward", path, e.Title)
		}

		q := domain.Quest{
			ID:          e.ID,
			Slug:        e.Slug,
			Title:       e.Title,
			Description: e.Description,
			Difficulty:  e.Difficulty,
			XPReward:    e.XPReward,
			OrderIndex:  e.OrderIndex,
			Published:   e.Published == nil || *e.Published,
		}
		if q.Slug == "" {
			q.Slug = slug.Make(q.Title)
		}
		if q.ID == "" {
			q.ID = q.Slug
		}
		if q.ID == "" {
			q.ID = uuid.NewString()
			q.Slug = q.ID
		}
		if seen[q.ID] {
			return nil, fmt.Errorf("%s: duplicate quest id %q", path, q.ID)
		}
		seen[q.ID] = true
		quests = append(quests, q)
	}
	return quests, nil
}

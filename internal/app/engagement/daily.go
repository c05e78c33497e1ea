package engagement

import (
	"cmp"
	"slices"

	"github.com/aimastery/questd/internal/domain"
)

// Daily challenge bonus XP. Fresh content pays more than a replay.
const (
	DailyBonusXP       int64 = 50
	DailyReplayBonusXP int64 = 25
)

// SelectDailyChallenge picks the quest for date from pool.
//
// Quests not in completed are preferred; if every quest is completed the
// whole pool is used and isReplay is true. The pool is ordered by
// (OrderIndex, ID) and indexed by date.Seed() mod len, so the pick depends
// only on the date and the completion state. ok is false for an empty pool.
func SelectDailyChallenge(date domain.Date, pool []domain.Quest, completed map[string]bool) (quest domain.Quest, isReplay bool, ok bool) {
	if len(pool) == 0 {
		return domain.Quest{}, false, false
	}

	candidates := make([]domain.Quest, 0, len(pool))
	for _, q := range pool {
		if !completed[q.ID] {
			candidates = append(candidates, q)
		}
	}
	if len(candidates) == 0 {
		candidates = append(candidates, pool...)
		isReplay = true
	}

	slices.SortStableFunc(candidates, func(a, b domain.Quest) int {
		if c := cmp.Compare(a.OrderIndex, b.OrderIndex); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return candidates[date.Seed()%len(candidates)], isReplay, true
}

// DailyBonus returns the bonus XP for the daily challenge.
func DailyBonus(isReplay bool) int64 {
	if isReplay {
		return DailyReplayBonusXP
	}
	return DailyBonusXP
}

package engagement_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/aimastery/questd/internal/app/engagement"
	"github.com/aimastery/questd/internal/domain"
	"github.com/aimastery/questd/internal/infra/sqlite"
)

// testDB creates a temporary SQLite database for testing.
func testDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testService(t *testing.T) (*engagement.Service, *sqlite.DB) {
	t.Helper()
	db := testDB(t)
	svc := engagement.NewService(db, nil)
	if err := svc.SeedBadges(context.Background(), engagement.DefaultBadges()); err != nil {
		t.Fatalf("seed badges: %v", err)
	}
	return svc, db
}

var noon = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

func complete(t *testing.T, svc *engagement.Service, user, quest string, base int64, at time.Time) *domain.CompletionResult {
	t.Helper()
	res, err := svc.CompleteQuestAt(context.Background(), engagement.CompletionRequest{
		UserID:     user,
		QuestID:    quest,
		BaseXP:     base,
		Submission: domain.Submission{Type: "text"},
	}, at)
	if err != nil {
		t.Fatalf("complete %s: %v", quest, err)
	}
	return res
}

// ═══════════════════════════════════════════════════════════════════════════
// Quest Completion Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestCompleteQuest_Scenario(t *testing.T) {
	svc, db := testService(t)
	ctx := context.Background()

	yesterday := domain.DateOf(noon).AddDays(-1)
	err := db.UpdateProfile(ctx, domain.UserProfile{
		UserID: "u1", XP: 90, Level: 1,
		CurrentStreak: 2, LongestStreak: 2, LastActivity: &yesterday,
	})
	if err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	res := complete(t, svc, "u1", "q1", 50, noon)

	if res.NewStreak != 3 {
		t.Errorf("expected streak 3, got %d", res.NewStreak)
	}
	if res.StreakMultiplier != 1.25 {
		t.Errorf("expected ×1.25, got %.2f", res.StreakMultiplier)
	}
	if res.XPEarned != 63 || res.XPBonus != 13 {
		t.Errorf("expected 63 (+13), got %d (+%d)", res.XPEarned, res.XPBonus)
	}
	if res.NewLevel != 2 || !res.LeveledUp {
		t.Errorf("expected level up to 2, got %d leveledUp=%v", res.NewLevel, res.LeveledUp)
	}
	if !slices.Equal(res.NewBadges, []string{"first-quest"}) {
		t.Errorf("expected [first-quest], got %v", res.NewBadges)
	}

	p, err := db.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.XP != 153 || p.Level != 2 {
		t.Errorf("expected 153 XP level 2, got %d level %d", p.XP, p.Level)
	}
	if p.CurrentStreak != 3 || p.LongestStreak != 3 {
		t.Errorf("expected streak 3/3, got %d/%d", p.CurrentStreak, p.LongestStreak)
	}
	if p.LastActivity == nil || *p.LastActivity != domain.DateOf(noon) {
		t.Errorf("expected last activity %s, got %v", domain.DateOf(noon), p.LastActivity)
	}

	prog, err := db.GetProgress(ctx, "u1", "q1")
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	if !prog.IsCompleted() || prog.XPEarned != 63 {
		t.Errorf("expected completed with 63 XP, got %+v", prog)
	}

	act, err := db.GetDailyActivity(ctx, "u1", domain.DateOf(noon))
	if err != nil {
		t.Fatalf("get activity: %v", err)
	}
	if act == nil || act.XPEarned != 63 || act.QuestsCompleted != 1 {
		t.Errorf("expected activity 63/1, got %+v", act)
	}
}

func TestCompleteQuest_NewUser(t *testing.T) {
	svc, db := testService(t)

	res := complete(t, svc, "fresh", "q1", 100, noon)
	if res.XPEarned != 100 || res.NewStreak != 1 || res.StreakLost {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.NewLevel != 2 || !res.LeveledUp {
		t.Errorf("100 XP should reach level 2, got %d", res.NewLevel)
	}

	p, _ := db.GetProfile(context.Background(), "fresh")
	if p == nil || p.XP != 100 {
		t.Fatalf("expected profile with 100 XP, got %+v", p)
	}
}

func TestCompleteQuest_LevelMatchesXP(t *testing.T) {
	svc, db := testService(t)
	ctx := context.Background()

	at := noon
	for i := 0; i < 25; i++ {
		res := complete(t, svc, "u1", fmt.Sprintf("q%d", i), int64(40+i*11), at)
		p, err := db.GetProfile(ctx, "u1")
		if err != nil {
			t.Fatalf("get profile: %v", err)
		}
		if p.Level != engagement.LevelOf(p.XP) {
			t.Fatalf("step %d: level %d does not match XP %d", i, p.Level, p.XP)
		}
		if res.NewLevel != p.Level {
			t.Fatalf("step %d: result level %d, stored %d", i, res.NewLevel, p.Level)
		}
		if p.LongestStreak < p.CurrentStreak {
			t.Fatalf("step %d: longest %d < current %d", i, p.LongestStreak, p.CurrentStreak)
		}
		at = at.Add(20 * time.Hour)
	}
}

func TestCompleteQuest_StreakAcrossDays(t *testing.T) {
	svc, _ := testService(t)

	complete(t, svc, "u1", "q1", 10, noon)
	complete(t, svc, "u1", "q2", 10, noon.Add(3*time.Hour)) // same day
	res := complete(t, svc, "u1", "q3", 10, noon.AddDate(0, 0, 1))
	if res.NewStreak != 2 {
		t.Errorf("expected streak 2, got %d", res.NewStreak)
	}

	res = complete(t, svc, "u1", "q4", 10, noon.AddDate(0, 0, 4))
	if res.NewStreak != 1 || !res.StreakLost {
		t.Errorf("expected broken streak, got %+v", res)
	}
}

func TestCompleteQuest_AlreadyCompleted(t *testing.T) {
	svc, db := testService(t)
	ctx := context.Background()

	first := complete(t, svc, "u1", "q1", 100, noon)
	second := complete(t, svc, "u1", "q1", 100, noon.Add(time.Hour))

	if !second.AlreadyCompleted {
		t.Error("expected AlreadyCompleted")
	}
	if second.XPEarned != 0 || len(second.NewBadges) != 0 {
		t.Errorf("resubmission must award nothing, got %+v", second)
	}

	p, _ := db.GetProfile(ctx, "u1")
	if p.XP != first.XPEarned {
		t.Errorf("XP changed on resubmission: %d", p.XP)
	}
	act, _ := db.GetDailyActivity(ctx, "u1", domain.DateOf(noon))
	if act.QuestsCompleted != 1 {
		t.Errorf("expected 1 completion today, got %d", act.QuestsCompleted)
	}
}

func TestCompleteQuest_BadgesAwardedOnce(t *testing.T) {
	svc, db := testService(t)
	ctx := context.Background()

	res := complete(t, svc, "u1", "q1", 1000, noon)
	want := []string{"first-quest", "level-5", "xp-1000"}
	if !slices.Equal(res.NewBadges, want) {
		t.Errorf("expected %v, got %v", want, res.NewBadges)
	}

	res = complete(t, svc, "u1", "q2", 10, noon)
	if len(res.NewBadges) != 0 {
		t.Errorf("expected no new badges, got %v", res.NewBadges)
	}

	earned, err := db.ListEarnedBadges(ctx, "u1")
	if err != nil {
		t.Fatalf("list earned: %v", err)
	}
	if len(earned) != 3 {
		t.Errorf("expected 3 earned badges, got %d", len(earned))
	}
}

func TestCompleteQuest_InvalidInput(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	cases := []engagement.CompletionRequest{
		{UserID: "", QuestID: "q1", BaseXP: 10},
		{UserID: "u1", QuestID: "", BaseXP: 10},
		{UserID: "u1", QuestID: "q1", BaseXP: -1},
	}
	for _, req := range cases {
		_, err := svc.CompleteQuestAt(ctx, req, noon)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("%+v: expected ErrInvalidInput, got %v", req, err)
		}
	}
}

func TestCompleteQuest_ZeroBaseXP(t *testing.T) {
	svc, _ := testService(t)
	res := complete(t, svc, "u1", "q1", 0, noon)
	if res.XPEarned != 0 || res.NewStreak != 1 {
		t.Errorf("zero base should still count activity, got %+v", res)
	}
	if !slices.Contains(res.NewBadges, "first-quest") {
		t.Error("zero-XP completion still counts as a completed quest")
	}
}

// failingStore wraps a real store and fails daily activity writes inside
// transactions, to check that earlier steps roll back.
type failingStore struct {
	*sqlite.DB
}

type failingRepo struct {
	domain.Repository
}

var errInjected = errors.New("injected failure")

func (f failingRepo) UpsertDailyActivity(context.Context, string, domain.Date, int64, int) error {
	return errInjected
}

func (s failingStore) WithTx(ctx context.Context, fn func(domain.Repository) error) error {
	return s.DB.WithTx(ctx, func(repo domain.Repository) error {
		return fn(failingRepo{repo})
	})
}

func TestCompleteQuest_RollsBackOnFailure(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	svc := engagement.NewService(failingStore{db}, nil)

	_, err := svc.CompleteQuestAt(ctx, engagement.CompletionRequest{
		UserID: "u1", QuestID: "q1", BaseXP: 100,
	}, noon)
	if !errors.Is(err, errInjected) {
		t.Fatalf("expected injected error, got %v", err)
	}

	p, err := db.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p != nil {
		t.Errorf("profile should not exist after rollback, got %+v", p)
	}
	prog, _ := db.GetProgress(ctx, "u1", "q1")
	if prog != nil {
		t.Errorf("progress should not exist after rollback, got %+v", prog)
	}

	// Retry against the healthy store succeeds from scratch.
	res, err := engagement.NewService(db, nil).CompleteQuestAt(ctx, engagement.CompletionRequest{
		UserID: "u1", QuestID: "q1", BaseXP: 100,
	}, noon)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if res.XPEarned != 100 || res.NewStreak != 1 {
		t.Errorf("unexpected retry result: %+v", res)
	}
}

func TestCompleteQuest_ConcurrentSameUser(t *testing.T) {
	svc, db := testService(t)
	ctx := context.Background()

	const n = 12
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.CompleteQuestAt(ctx, engagement.CompletionRequest{
				UserID: "u1", QuestID: fmt.Sprintf("q%d", i), BaseXP: 10,
			}, noon)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("complete: %v", err)
		}
	}

	p, _ := db.GetProfile(ctx, "u1")
	if p.XP != n*10 {
		t.Errorf("expected %d XP, got %d", n*10, p.XP)
	}
	count, _ := db.CountCompletedQuests(ctx, "u1")
	if count != n {
		t.Errorf("expected %d completions, got %d", n, count)
	}
	act, _ := db.GetDailyActivity(ctx, "u1", domain.DateOf(noon))
	if act.QuestsCompleted != n || act.XPEarned != n*10 {
		t.Errorf("expected activity %d/%d, got %+v", n*10, n, act)
	}
}

func TestCompleteQuest_ConcurrentSameQuest(t *testing.T) {
	svc, db := testService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan *domain.CompletionResult, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.CompleteQuestAt(ctx, engagement.CompletionRequest{
				UserID: "u1", QuestID: "q1", BaseXP: 40,
			}, noon)
			if err != nil {
				t.Errorf("complete: %v", err)
				return
			}
			results <- res
		}()
	}
	wg.Wait()
	close(results)

	awarded := 0
	for res := range results {
		if !res.AlreadyCompleted {
			awarded++
		}
	}
	if awarded != 1 {
		t.Errorf("expected exactly one award, got %d", awarded)
	}
	p, _ := db.GetProfile(ctx, "u1")
	if p.XP != 40 {
		t.Errorf("expected 40 XP, got %d", p.XP)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Start / Query Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestStartQuest(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	p, err := svc.StartQuestAt(ctx, "u1", "q1", noon)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if p.Status != domain.StatusInProgress {
		t.Errorf("expected in_progress, got %s", p.Status)
	}

	again, err := svc.StartQuestAt(ctx, "u1", "q1", noon.Add(time.Hour))
	if err != nil {
		t.Fatalf("start again: %v", err)
	}
	if !again.StartedAt.Equal(p.StartedAt) {
		t.Errorf("restart changed started_at: %v -> %v", p.StartedAt, again.StartedAt)
	}

	complete(t, svc, "u1", "q1", 10, noon.Add(2*time.Hour))
	done, _ := svc.StartQuestAt(ctx, "u1", "q1", noon.Add(3*time.Hour))
	if done.Status != domain.StatusCompleted {
		t.Errorf("starting a completed quest must not reset it, got %s", done.Status)
	}
	if !done.StartedAt.Equal(p.StartedAt) {
		t.Errorf("completion should keep original started_at")
	}

	if _, err := svc.StartQuestAt(ctx, "", "q1", noon); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProfile_ZeroState(t *testing.T) {
	svc, _ := testService(t)
	v, err := svc.Profile(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if v.XP != 0 || v.Level != 1 || v.CurrentStreak != 0 {
		t.Errorf("expected zero state, got %+v", v)
	}
	if v.XPToNextLevel != 100 || v.NextLevelXP != 100 {
		t.Errorf("expected 100 XP to go, got %d", v.XPToNextLevel)
	}
}

func TestProfile_AfterCompletion(t *testing.T) {
	svc, _ := testService(t)
	complete(t, svc, "u1", "q1", 175, noon)

	v, err := svc.Profile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if v.QuestsCompleted != 1 || v.Level != 2 || v.LevelProgress != 50 {
		t.Errorf("unexpected view: %+v", v)
	}
}

func TestBadges_Status(t *testing.T) {
	svc, _ := testService(t)
	complete(t, svc, "u1", "q1", 10, noon)

	statuses, err := svc.Badges(context.Background(), "u1")
	if err != nil {
		t.Fatalf("badges: %v", err)
	}
	if len(statuses) != len(engagement.DefaultBadges()) {
		t.Fatalf("expected full catalog, got %d", len(statuses))
	}
	for _, b := range statuses {
		if b.Earned != (b.ID == "first-quest") {
			t.Errorf("badge %s earned=%v", b.ID, b.Earned)
		}
	}
}

func seedQuests(t *testing.T, svc *engagement.Service) {
	t.Helper()
	err := svc.SeedQuests(context.Background(), []domain.Quest{
		{ID: "q-a", Slug: "a", Title: "A", XPReward: 50, OrderIndex: 1, Published: true},
		{ID: "q-b", Slug: "b", Title: "B", XPReward: 50, OrderIndex: 2, Published: true},
		{ID: "q-c", Slug: "c", Title: "C", XPReward: 50, OrderIndex: 3, Published: true},
		{ID: "q-hidden", Slug: "hidden", Title: "Hidden", OrderIndex: 0, Published: false},
	})
	if err != nil {
		t.Fatalf("seed quests: %v", err)
	}
}

func TestDailyChallenge(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()
	seedQuests(t, svc)
	day := domain.DateOf(noon) // 20250701 % 3 == 2

	dc, err := svc.DailyChallengeAt(ctx, "u1", day)
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if dc.Quest.ID != "q-c" || dc.IsReplay || dc.HasActivityToday || dc.BonusXP != 50 {
		t.Errorf("unexpected challenge: %+v", dc)
	}

	same, _ := svc.DailyChallengeAt(ctx, "u2", day)
	if same.Quest.ID != dc.Quest.ID {
		t.Errorf("users with the same state should see the same quest")
	}

	for _, id := range []string{"q-a", "q-b", "q-c"} {
		complete(t, svc, "u1", id, 10, noon)
	}
	replay, err := svc.DailyChallengeAt(ctx, "u1", day)
	if err != nil {
		t.Fatalf("daily replay: %v", err)
	}
	if !replay.IsReplay || replay.BonusXP != 25 || !replay.HasActivityToday {
		t.Errorf("expected replay with activity, got %+v", replay)
	}
}

func TestDailyChallenge_NoQuests(t *testing.T) {
	svc, _ := testService(t)
	_, err := svc.DailyChallengeAt(context.Background(), "u1", domain.DateOf(noon))
	if !errors.Is(err, domain.ErrNoQuestsAvailable) {
		t.Errorf("expected ErrNoQuestsAvailable, got %v", err)
	}
}

func TestLeaderboard(t *testing.T) {
	svc, _ := testService(t)
	complete(t, svc, "low", "q1", 10, noon)
	complete(t, svc, "high", "q1", 500, noon)
	complete(t, svc, "mid", "q1", 100, noon)

	entries, err := svc.Leaderboard(context.Background(), 2)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].UserID != "high" || entries[0].Rank != 1 {
		t.Errorf("expected high first, got %+v", entries[0])
	}
	if entries[1].UserID != "mid" || entries[1].Rank != 2 {
		t.Errorf("expected mid second, got %+v", entries[1])
	}
}

func TestQuest_NotFound(t *testing.T) {
	svc, _ := testService(t)
	if _, err := svc.Quest(context.Background(), "missing"); !errors.Is(err, domain.ErrQuestNotFound) {
		t.Errorf("expected ErrQuestNotFound, got %v", err)
	}
}

func TestSetIdentity(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()
	complete(t, svc, "u1", "q1", 120, noon)

	v, err := svc.SetIdentityAt(ctx, engagement.IdentityRequest{
		UserID: "u1", Username: "  Ada_L ", DisplayName: " Ada Lovelace ",
	}, noon)
	if err != nil {
		t.Fatalf("set identity: %v", err)
	}
	if v.Username != "ada_l" || v.DisplayName != "Ada Lovelace" {
		t.Errorf("identity = %q/%q", v.Username, v.DisplayName)
	}
	if v.XP != 120 || v.Level != 2 || v.QuestsCompleted != 1 {
		t.Errorf("identity update changed progress: %+v", v)
	}

	// Later completions keep the identity.
	complete(t, svc, "u1", "q2", 10, noon.Add(time.Hour))
	entries, err := svc.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 1 || entries[0].Username != "ada_l" || entries[0].DisplayName != "Ada Lovelace" {
		t.Errorf("leaderboard = %+v", entries)
	}
}

func TestSetIdentity_NewUser(t *testing.T) {
	svc, _ := testService(t)
	v, err := svc.SetIdentityAt(context.Background(), engagement.IdentityRequest{UserID: "u1", Username: "ada"}, noon)
	if err != nil {
		t.Fatalf("set identity: %v", err)
	}
	if v.XP != 0 || v.Level != 1 || v.Username != "ada" {
		t.Errorf("expected zero-state profile with username, got %+v", v)
	}
}

func TestSetIdentity_UsernameTaken(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()
	if _, err := svc.SetIdentity(ctx, engagement.IdentityRequest{UserID: "u1", Username: "ada"}); err != nil {
		t.Fatal(err)
	}

	_, err := svc.SetIdentity(ctx, engagement.IdentityRequest{UserID: "u2", Username: "ADA"})
	if !errors.Is(err, domain.ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
	if _, err := svc.SetIdentity(ctx, engagement.IdentityRequest{UserID: "u1", Username: "ada", DisplayName: "Ada"}); err != nil {
		t.Errorf("owner should be able to keep the username: %v", err)
	}
}

func TestSetIdentity_InvalidInput(t *testing.T) {
	svc, _ := testService(t)
	long := make([]rune, 65)
	for i := range long {
		long[i] = 'é'
	}

	cases := []engagement.IdentityRequest{
		{UserID: "", Username: "ada"},
		{UserID: "u1", Username: ""},
		{UserID: "u1", Username: "ab"},
		{UserID: "u1", Username: "has space"},
		{UserID: "u1", Username: "dash-ed"},
		{UserID: "u1", Username: "ada", DisplayName: string(long)},
	}
	for _, req := range cases {
		if _, err := svc.SetIdentity(context.Background(), req); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("SetIdentity(%+v) = %v, want ErrInvalidInput", req, err)
		}
	}
}

func TestPublicProfileByUsername(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()
	complete(t, svc, "u1", "q1", 60, noon)
	if _, err := svc.SetIdentityAt(ctx, engagement.IdentityRequest{UserID: "u1", Username: "ada", DisplayName: "Ada"}, noon); err != nil {
		t.Fatal(err)
	}

	p, err := svc.PublicProfileByUsername(ctx, "Ada")
	if err != nil {
		t.Fatalf("public profile: %v", err)
	}
	if p.Username != "ada" || p.XP != 60 || p.CurrentStreak != 1 || p.QuestsCompleted != 1 {
		t.Errorf("unexpected public profile: %+v", p)
	}
	if !slices.Equal(p.Badges, []string{"first-quest"}) {
		t.Errorf("badges = %v", p.Badges)
	}

	if _, err := svc.PublicProfileByUsername(ctx, "nobody"); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
	if _, err := svc.PublicProfileByUsername(ctx, " "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestIsCompleted(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	done, err := svc.IsCompleted(ctx, "u1", "q1")
	if err != nil || done {
		t.Fatalf("IsCompleted before = %v, %v", done, err)
	}
	complete(t, svc, "u1", "q1", 10, noon)
	done, err = svc.IsCompleted(ctx, "u1", "q1")
	if err != nil || !done {
		t.Errorf("IsCompleted after = %v, %v", done, err)
	}
}

func TestBadges_EarnedAtOnlyWhenEarned(t *testing.T) {
	svc, _ := testService(t)
	complete(t, svc, "u1", "q1", 10, noon)

	statuses, err := svc.Badges(context.Background(), "u1")
	if err != nil {
		t.Fatalf("badges: %v", err)
	}
	for _, b := range statuses {
		if b.Earned != (b.EarnedAt != nil) {
			t.Errorf("badge %s earned=%v earned_at=%v", b.ID, b.Earned, b.EarnedAt)
		}
		if b.EarnedAt != nil && !b.EarnedAt.Equal(noon) {
			t.Errorf("badge %s earned_at = %v, want %v", b.ID, b.EarnedAt, noon)
		}
	}
}

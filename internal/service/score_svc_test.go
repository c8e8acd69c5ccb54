package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greencycle/greencycle-go/internal/model"
	"github.com/greencycle/greencycle-go/internal/repository"
)

var errStoreDown = errors.New("store unreachable")

// failingUserStore fails every call, as an unreachable database would.
type failingUserStore struct{}

func (failingUserStore) FindAll(context.Context) ([]model.User, error) { return nil, errStoreDown }
func (failingUserStore) FindByID(context.Context, int64) (*model.User, error) {
	return nil, errStoreDown
}
func (failingUserStore) FindByEmail(context.Context, string) (*model.User, error) {
	return nil, errStoreDown
}
func (failingUserStore) FindAllOrderedByScoreDesc(context.Context) ([]model.User, error) {
	return nil, errStoreDown
}
func (failingUserStore) Save(context.Context, *model.User) (*model.User, error) {
	return nil, errStoreDown
}
func (failingUserStore) Count(context.Context) (int64, error) { return 0, errStoreDown }

// countingUserStore records how many times Save is called.
type countingUserStore struct {
	*repository.MemoryUserRepo
	saves int
}

func (s *countingUserStore) Save(ctx context.Context, u *model.User) (*model.User, error) {
	s.saves++
	return s.MemoryUserRepo.Save(ctx, u)
}

// unorderedUserStore returns users in insertion order even when asked for
// score order, to prove the ledger sorts on its own.
type unorderedUserStore struct {
	*repository.MemoryUserRepo
}

func (s unorderedUserStore) FindAllOrderedByScoreDesc(ctx context.Context) ([]model.User, error) {
	return s.MemoryUserRepo.FindAll(ctx)
}

func newTestLedger(t *testing.T) (*ScoreLedger, *repository.MemoryUserRepo) {
	t.Helper()
	users := repository.NewMemoryUserRepo()
	return NewScoreLedger(users, nil, zerolog.Nop()), users
}

func createUser(t *testing.T, users UserStore, email string, c model.ActivityCounters) *model.User {
	t.Helper()
	u, err := users.Save(context.Background(), &model.User{
		Email:            email,
		Name:             email,
		ActivityCounters: c,
		TotalScore:       ComputeTotalScore(c),
	})
	require.NoError(t, err)
	return u
}

func TestComputeTotalScore(t *testing.T) {
	tests := []struct {
		name     string
		counters model.ActivityCounters
		want     int
	}{
		{"all zero", model.ActivityCounters{}, 0},
		{"one dump", model.ActivityCounters{DumpsReported: 1}, 10},
		{"one spot", model.ActivityCounters{SpotsAdopted: 1}, 25},
		{"one sale", model.ActivityCounters{MarketplaceSales: 1}, 5},
		{"one cleanup", model.ActivityCounters{CleanupSessions: 1}, 50},
		{"one token", model.ActivityCounters{CycleTokensEarned: 1}, 2},
		{"sample seed", model.ActivityCounters{DumpsReported: 5, SpotsAdopted: 2, MarketplaceSales: 3, CleanupSessions: 1, CycleTokensEarned: 50}, 265},
		{"every badge threshold", model.ActivityCounters{DumpsReported: 10, SpotsAdopted: 1, MarketplaceSales: 5, CleanupSessions: 3, CycleTokensEarned: 100}, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeTotalScore(tt.counters); got != tt.want {
				t.Errorf("ComputeTotalScore(%+v) = %d, want %d", tt.counters, got, tt.want)
			}
		})
	}
}

func TestBadgesFor(t *testing.T) {
	tests := []struct {
		name     string
		counters model.ActivityCounters
		want     []model.Badge
	}{
		{"no activity", model.ActivityCounters{}, []model.Badge{}},
		{"just below every threshold", model.ActivityCounters{DumpsReported: 9, MarketplaceSales: 4, CleanupSessions: 2, CycleTokensEarned: 99}, []model.Badge{}},
		{"top cleaner", model.ActivityCounters{DumpsReported: 10}, []model.Badge{model.BadgeTopCleaner}},
		{"spot adopter", model.ActivityCounters{SpotsAdopted: 1}, []model.Badge{model.BadgeSpotAdopter}},
		{"marketplace seller", model.ActivityCounters{MarketplaceSales: 5}, []model.Badge{model.BadgeMarketplaceSeller}},
		{"cleanup champion", model.ActivityCounters{CleanupSessions: 3}, []model.Badge{model.BadgeCleanupChampion}},
		{"token collector", model.ActivityCounters{CycleTokensEarned: 100}, []model.Badge{model.BadgeTokenCollector}},
		{
			"all five",
			model.ActivityCounters{DumpsReported: 10, SpotsAdopted: 1, MarketplaceSales: 5, CleanupSessions: 3, CycleTokensEarned: 100},
			[]model.Badge{model.BadgeTopCleaner, model.BadgeSpotAdopter, model.BadgeMarketplaceSeller, model.BadgeCleanupChampion, model.BadgeTokenCollector},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BadgesFor(tt.counters))
		})
	}
}

func TestBadgesFor_MonotonicInEachCounter(t *testing.T) {
	base := model.ActivityCounters{DumpsReported: 3, SpotsAdopted: 0, MarketplaceSales: 4, CleanupSessions: 2, CycleTokensEarned: 60}
	bumps := []func(*model.ActivityCounters){
		func(c *model.ActivityCounters) { c.DumpsReported += 20 },
		func(c *model.ActivityCounters) { c.SpotsAdopted += 1 },
		func(c *model.ActivityCounters) { c.MarketplaceSales += 1 },
		func(c *model.ActivityCounters) { c.CleanupSessions += 5 },
		func(c *model.ActivityCounters) { c.CycleTokensEarned += 40 },
	}

	for i, bump := range bumps {
		before := BadgesFor(base)
		c := base
		bump(&c)
		after := BadgesFor(c)

		assert.Len(t, after, len(before)+1, "bump %d should add exactly one badge", i)
		for _, b := range before {
			assert.Contains(t, after, b, "bump %d removed badge %s", i, b)
		}
	}
}

func TestBadge_Icon(t *testing.T) {
	assert.Equal(t, "🏆", model.BadgeTopCleaner.Icon())
	assert.Equal(t, "💰", model.BadgeTokenCollector.Icon())
	assert.Equal(t, "", model.Badge("unknown").Icon())
}

func TestParseActivityKind(t *testing.T) {
	assert.Equal(t, ActivityDumpReport, ParseActivityKind("DUMP_REPORT"))
	assert.Equal(t, ActivityCycleTokens, ParseActivityKind(" cycle_tokens "))
	assert.Equal(t, ActivityKind("recycled"), ParseActivityKind("Recycled"))
}

func TestApplyActivity(t *testing.T) {
	tests := []struct {
		name        string
		kind        ActivityKind
		points      int
		wantChanged bool
		want        model.ActivityCounters
	}{
		{"dump report ignores points", ActivityDumpReport, 500, true, model.ActivityCounters{DumpsReported: 1}},
		{"spot adopted", ActivitySpotAdopted, 0, true, model.ActivityCounters{SpotsAdopted: 1}},
		{"marketplace sale", ActivityMarketplaceSale, 7, true, model.ActivityCounters{MarketplaceSales: 1}},
		{"cleanup session", ActivityCleanupSession, -3, true, model.ActivityCounters{CleanupSessions: 1}},
		{"cycle tokens adds points", ActivityCycleTokens, 42, true, model.ActivityCounters{CycleTokensEarned: 42}},
		{"cycle tokens zero", ActivityCycleTokens, 0, false, model.ActivityCounters{}},
		{"cycle tokens negative", ActivityCycleTokens, -5, false, model.ActivityCounters{}},
		{"unknown kind", ActivityKind("tree_planted"), 3, false, model.ActivityCounters{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &model.User{}
			changed, err := ApplyActivity(u, tt.kind, tt.points)
			require.NoError(t, err)
			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.want, u.ActivityCounters)
			assert.Equal(t, ComputeTotalScore(u.ActivityCounters), u.TotalScore)
		})
	}
}

func TestApplyActivity_RecomputesFromScratch(t *testing.T) {
	// A drifted stored total is corrected by the next mutation.
	u := &model.User{ActivityCounters: model.ActivityCounters{DumpsReported: 2}, TotalScore: 9999}
	_, err := ApplyActivity(u, ActivitySpotAdopted, 0)
	require.NoError(t, err)
	assert.Equal(t, 2*10+25, u.TotalScore)
}

func TestApplyActivity_ScoreLimit(t *testing.T) {
	tests := []struct {
		name   string
		start  model.ActivityCounters
		kind   ActivityKind
		points int
	}{
		{"huge token grant", model.ActivityCounters{}, ActivityCycleTokens, math.MaxInt64},
		{"tokens one past the limit", model.ActivityCounters{}, ActivityCycleTokens, MaxTotalScore/PointsPerCycleToken + 1},
		{"tokens pushing a full total over", model.ActivityCounters{CycleTokensEarned: MaxTotalScore / PointsPerCycleToken}, ActivityCycleTokens, 1},
		{"increment pushing a full total over", model.ActivityCounters{CycleTokensEarned: MaxTotalScore / PointsPerCycleToken}, ActivityCleanupSession, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &model.User{ActivityCounters: tt.start, TotalScore: ComputeTotalScore(tt.start)}
			changed, err := ApplyActivity(u, tt.kind, tt.points)
			assert.ErrorIs(t, err, ErrScoreLimit)
			assert.False(t, changed)
			assert.Equal(t, tt.start, u.ActivityCounters)
			assert.Equal(t, ComputeTotalScore(tt.start), u.TotalScore)
		})
	}
}

func TestApplyActivity_ReachesLimitExactly(t *testing.T) {
	u := &model.User{}
	changed, err := ApplyActivity(u, ActivityCycleTokens, MaxTotalScore/PointsPerCycleToken)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, MaxTotalScore/PointsPerCycleToken, u.CycleTokensEarned)
	assert.LessOrEqual(t, u.TotalScore, MaxTotalScore)
	assert.Positive(t, u.TotalScore)
}

func TestRecordActivity_EveryKind(t *testing.T) {
	ctx := context.Background()
	ledger, users := newTestLedger(t)
	u := createUser(t, users, "ada@example.com", model.ActivityCounters{})

	steps := []struct {
		kind   ActivityKind
		points int
	}{
		{ActivityDumpReport, 10},
		{ActivitySpotAdopted, 0},
		{ActivityMarketplaceSale, 0},
		{ActivityCleanupSession, 0},
		{ActivityCycleTokens, 15},
		{ActivityCycleTokens, 5},
	}
	for _, s := range steps {
		require.NoError(t, ledger.RecordActivity(ctx, u.ID, s.kind, s.points))

		got, err := users.FindByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, ComputeTotalScore(got.ActivityCounters), got.TotalScore, "after %s", s.kind)
	}

	got, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ActivityCounters{
		DumpsReported: 1, SpotsAdopted: 1, MarketplaceSales: 1, CleanupSessions: 1, CycleTokensEarned: 20,
	}, got.ActivityCounters)
	assert.Equal(t, 10+25+5+50+40, got.TotalScore)
}

func TestRecordActivity_KindIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	ledger, users := newTestLedger(t)
	u := createUser(t, users, "ada@example.com", model.ActivityCounters{})

	require.NoError(t, ledger.RecordActivity(ctx, u.ID, ParseActivityKind("Cleanup_Session"), 0))

	got, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CleanupSessions)
}

func TestRecordActivity_MissingUserIsNoop(t *testing.T) {
	ledger, _ := newTestLedger(t)
	assert.NoError(t, ledger.RecordActivity(context.Background(), 404, ActivityDumpReport, 10))
}

func TestRecordActivity_UnknownKindDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	store := &countingUserStore{MemoryUserRepo: repository.NewMemoryUserRepo()}
	ledger := NewScoreLedger(store, nil, zerolog.Nop())
	u := createUser(t, store, "ada@example.com", model.ActivityCounters{DumpsReported: 2})
	store.saves = 0

	require.NoError(t, ledger.RecordActivity(ctx, u.ID, ActivityKind("tree_planted"), 50))
	assert.Equal(t, 0, store.saves)

	got, err := store.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.DumpsReported)
	assert.Equal(t, 20, got.TotalScore)
}

func TestRecordActivity_ScoreLimitKeepsCountersMonotonic(t *testing.T) {
	ctx := context.Background()
	store := &countingUserStore{MemoryUserRepo: repository.NewMemoryUserRepo()}
	ledger := NewScoreLedger(store, nil, zerolog.Nop())
	u := createUser(t, store, "ada@example.com", model.ActivityCounters{CycleTokensEarned: 10})
	store.saves = 0

	err := ledger.RecordActivity(ctx, u.ID, ActivityCycleTokens, math.MaxInt64)
	assert.ErrorIs(t, err, ErrScoreLimit)
	err = ledger.RecordActivity(ctx, u.ID, ActivityCycleTokens, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, store.saves)

	got, err := store.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 11, got.CycleTokensEarned)
	assert.Equal(t, 22, got.TotalScore)
}

func TestRecordActivity_StoreFailurePropagates(t *testing.T) {
	ledger := NewScoreLedger(failingUserStore{}, nil, zerolog.Nop())
	err := ledger.RecordActivity(context.Background(), 1, ActivityDumpReport, 0)
	assert.ErrorIs(t, err, errStoreDown)
}

func TestGetLeaderboard_OrderAndTieBreak(t *testing.T) {
	store := unorderedUserStore{MemoryUserRepo: repository.NewMemoryUserRepo()}
	ledger := NewScoreLedger(store, nil, zerolog.Nop())

	createUser(t, store, "low@example.com", model.ActivityCounters{DumpsReported: 1})
	createUser(t, store, "tie-a@example.com", model.ActivityCounters{CleanupSessions: 2})
	createUser(t, store, "top@example.com", model.ActivityCounters{CleanupSessions: 5})
	createUser(t, store, "tie-b@example.com", model.ActivityCounters{CleanupSessions: 2})

	res := ledger.GetLeaderboard(context.Background())
	require.False(t, res.Degraded())
	require.Len(t, res.Entries, 4)

	var names []string
	var ranks []int
	for _, e := range res.Entries {
		names = append(names, e.Name)
		ranks = append(ranks, e.Rank)
	}
	assert.Equal(t, []string{"top@example.com", "tie-a@example.com", "tie-b@example.com", "low@example.com"}, names)
	assert.Equal(t, []int{1, 2, 3, 4}, ranks)
	assert.Equal(t, []model.Badge{model.BadgeCleanupChampion}, res.Entries[0].Badges)
}

func TestGetLeaderboard_EntryCarriesCountersAndBadges(t *testing.T) {
	ledger, users := newTestLedger(t)
	c := model.ActivityCounters{DumpsReported: 10, SpotsAdopted: 1, MarketplaceSales: 5, CleanupSessions: 3, CycleTokensEarned: 100}
	u := createUser(t, users, "champ@example.com", c)

	res := ledger.GetLeaderboard(context.Background())
	require.Len(t, res.Entries, 1)

	e := res.Entries[0]
	assert.Equal(t, u.ID, e.ID)
	assert.Equal(t, 500, e.TotalScore)
	assert.Equal(t, c, e.ActivityCounters)
	assert.Len(t, e.Badges, 5)
}

func TestGetLeaderboard_EmptyStore(t *testing.T) {
	ledger, _ := newTestLedger(t)
	res := ledger.GetLeaderboard(context.Background())
	assert.False(t, res.Degraded())
	assert.NotNil(t, res.Entries)
	assert.Empty(t, res.Entries)
}

func TestGetLeaderboard_StoreFailureDegradesToEmpty(t *testing.T) {
	ledger := NewScoreLedger(failingUserStore{}, nil, zerolog.Nop())
	res := ledger.GetLeaderboard(context.Background())

	assert.True(t, res.Degraded())
	assert.ErrorIs(t, res.Err, errStoreDown)
	assert.NotNil(t, res.Entries)
	assert.Empty(t, res.Entries)
}

func TestGetUserStats(t *testing.T) {
	ctx := context.Background()
	ledger, users := newTestLedger(t)
	u := createUser(t, users, "ada@example.com", model.ActivityCounters{SpotsAdopted: 2})

	stats, err := ledger.GetUserStats(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, 50, stats.TotalScore)
	assert.Equal(t, 2, stats.SpotsAdopted)
	assert.Equal(t, []model.Badge{model.BadgeSpotAdopter}, stats.Badges)
	assert.Equal(t, []string{"🌳"}, stats.BadgeIcons)
	assert.Zero(t, stats.Rank)

	missing, err := ledger.GetUserStats(ctx, 999)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetUserStats_StoreFailurePropagates(t *testing.T) {
	ledger := NewScoreLedger(failingUserStore{}, nil, zerolog.Nop())
	_, err := ledger.GetUserStats(context.Background(), 1)
	assert.ErrorIs(t, err, errStoreDown)
}

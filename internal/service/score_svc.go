package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/greencycle/greencycle-go/internal/metrics"
	"github.com/greencycle/greencycle-go/internal/model"
	"github.com/greencycle/greencycle-go/internal/repository"
)

// ActivityKind is a category of user action that earns score points.
type ActivityKind string

const (
	ActivityDumpReport      ActivityKind = "dump_report"
	ActivitySpotAdopted     ActivityKind = "spot_adopted"
	ActivityMarketplaceSale ActivityKind = "marketplace_sale"
	ActivityCleanupSession  ActivityKind = "cleanup_session"
	ActivityCycleTokens     ActivityKind = "cycle_tokens"
)

// ParseActivityKind normalizes s; it does not reject unknown kinds.
func ParseActivityKind(s string) ActivityKind {
	return ActivityKind(strings.ToLower(strings.TrimSpace(s)))
}

// Score weights per counter.
const (
	PointsPerDumpReport      = 10
	PointsPerSpotAdopted     = 25
	PointsPerMarketplaceSale = 5
	PointsPerCleanupSession  = 50
	PointsPerCycleToken      = 2
)

// Badge thresholds.
const (
	TopCleanerDumps         = 10
	SpotAdopterSpots        = 1
	MarketplaceSellerSales  = 5
	CleanupChampionSessions = 3
	TokenCollectorTokens    = 100
)

// ComputeTotalScore derives the total score from the counters:
//
//	total = dumps*10 + spots*25 + sales*5 + cleanups*50 + tokens*2
func ComputeTotalScore(c model.ActivityCounters) int {
	return c.DumpsReported*PointsPerDumpReport +
		c.SpotsAdopted*PointsPerSpotAdopted +
		c.MarketplaceSales*PointsPerMarketplaceSale +
		c.CleanupSessions*PointsPerCleanupSession +
		c.CycleTokensEarned*PointsPerCycleToken
}

// BadgesFor returns every badge the counters qualify for. The result is never nil.
func BadgesFor(c model.ActivityCounters) []model.Badge {
	badges := make([]model.Badge, 0, 5)
	if c.DumpsReported >= TopCleanerDumps {
		badges = append(badges, model.BadgeTopCleaner)
	}
	if c.SpotsAdopted >= SpotAdopterSpots {
		badges = append(badges, model.BadgeSpotAdopter)
	}
	if c.MarketplaceSales >= MarketplaceSellerSales {
		badges = append(badges, model.BadgeMarketplaceSeller)
	}
	if c.CleanupSessions >= CleanupChampionSessions {
		badges = append(badges, model.BadgeCleanupChampion)
	}
	if c.CycleTokensEarned >= TokenCollectorTokens {
		badges = append(badges, model.BadgeTokenCollector)
	}
	return badges
}

// MaxTotalScore is the largest total a user can reach. Scores are stored in
// INTEGER columns.
const MaxTotalScore = math.MaxInt32

// ErrScoreLimit is returned when an activity would push the total past
// MaxTotalScore. The user is left unchanged.
var ErrScoreLimit = errors.New("activity would exceed the maximum total score")

// ApplyActivity increments the counter matching kind and recomputes the
// total. cycle_tokens adds points; every other kind adds exactly one.
// It reports whether anything changed.
func ApplyActivity(u *model.User, kind ActivityKind, points int) (bool, error) {
	next := u.ActivityCounters
	switch kind {
	case ActivityDumpReport:
		next.DumpsReported++
	case ActivitySpotAdopted:
		next.SpotsAdopted++
	case ActivityMarketplaceSale:
		next.MarketplaceSales++
	case ActivityCleanupSession:
		next.CleanupSessions++
	case ActivityCycleTokens:
		if points <= 0 {
			return false, nil
		}
		// Every stored counter is bounded by the total, so the sum below
		// cannot wrap once points is.
		if points > MaxTotalScore/PointsPerCycleToken {
			return false, ErrScoreLimit
		}
		next.CycleTokensEarned += points
	default:
		return false, nil
	}

	total := ComputeTotalScore(next)
	if total > MaxTotalScore || total < 0 {
		return false, ErrScoreLimit
	}
	u.ActivityCounters = next
	u.TotalScore = total
	return true, nil
}

// LeaderboardResult carries the leaderboard together with the reason it is
// empty when the store could not be read. Entries is never nil.
type LeaderboardResult struct {
	Entries []model.LeaderboardEntry
	Err     error
}

// Degraded reports whether the entries are a fallback for a failed read.
func (r LeaderboardResult) Degraded() bool {
	return r.Err != nil
}

// ScoreLedger owns activity counters, score computation and the leaderboard.
//
// It takes no locks: two concurrent RecordActivity calls for the same user
// can lose one update. Individual store operations are serialized by the store.
type ScoreLedger struct {
	users UserStore
	cache *CacheService
	log   zerolog.Logger
}

// NewScoreLedger creates a ledger. cache may be nil.
func NewScoreLedger(users UserStore, cache *CacheService, log zerolog.Logger) *ScoreLedger {
	return &ScoreLedger{users: users, cache: cache, log: log}
}

// RecordActivity applies one activity to a user and persists the result.
// A missing user or an unrecognized kind is a silent no-op.
func (l *ScoreLedger) RecordActivity(ctx context.Context, userID int64, kind ActivityKind, points int) error {
	u, err := l.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			l.log.Debug().Int64("user_id", userID).Str("kind", string(kind)).
				Msg("record activity: user not found, ignoring")
			return nil
		}
		return fmt.Errorf("record activity: load user %d: %w", userID, err)
	}

	changed, err := ApplyActivity(u, kind, points)
	if err != nil {
		return fmt.Errorf("record activity: user %d: %w", userID, err)
	}
	if !changed {
		l.log.Debug().Int64("user_id", userID).Str("kind", string(kind)).Int("points", points).
			Msg("record activity: nothing to apply")
		return nil
	}

	if _, err := l.users.Save(ctx, u); err != nil {
		return fmt.Errorf("record activity: save user %d: %w", userID, err)
	}

	metrics.ActivitiesRecorded.WithLabelValues(string(kind)).Inc()
	l.cache.InvalidateLeaderboard(ctx)

	l.log.Info().Int64("user_id", userID).Str("kind", string(kind)).
		Int("total_score", u.TotalScore).Msg("activity recorded")
	return nil
}

// GetLeaderboard returns all users ranked by total score descending, ties
// broken by ascending user id. A store failure yields an empty, degraded result.
func (l *ScoreLedger) GetLeaderboard(ctx context.Context) LeaderboardResult {
	if entries, ok := l.cache.GetLeaderboard(ctx); ok {
		if entries == nil {
			entries = []model.LeaderboardEntry{}
		}
		return LeaderboardResult{Entries: entries}
	}

	users, err := l.users.FindAllOrderedByScoreDesc(ctx)
	if err != nil {
		metrics.LeaderboardDegraded.Inc()
		l.log.Error().Err(err).Msg("leaderboard: store read failed, serving empty list")
		return LeaderboardResult{Entries: []model.LeaderboardEntry{}, Err: err}
	}

	sort.SliceStable(users, func(i, j int) bool {
		if users[i].TotalScore != users[j].TotalScore {
			return users[i].TotalScore > users[j].TotalScore
		}
		return users[i].ID < users[j].ID
	})

	entries := make([]model.LeaderboardEntry, 0, len(users))
	for i := range users {
		e := toLeaderboardEntry(&users[i])
		e.Rank = i + 1
		entries = append(entries, e)
	}

	l.cache.SetLeaderboard(ctx, entries)
	return LeaderboardResult{Entries: entries}
}

// GetUserStats returns the leaderboard view of a single user, or nil when
// the user does not exist.
func (l *ScoreLedger) GetUserStats(ctx context.Context, userID int64) (*model.LeaderboardEntry, error) {
	u, err := l.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("user stats %d: %w", userID, err)
	}
	e := toLeaderboardEntry(u)
	return &e, nil
}

// InvalidateLeaderboard drops any cached leaderboard.
func (l *ScoreLedger) InvalidateLeaderboard(ctx context.Context) {
	l.cache.InvalidateLeaderboard(ctx)
}

func toLeaderboardEntry(u *model.User) model.LeaderboardEntry {
	badges := BadgesFor(u.ActivityCounters)
	icons := make([]string, len(badges))
	for i, b := range badges {
		icons[i] = b.Icon()
	}
	return model.LeaderboardEntry{
		ID:               u.ID,
		Name:             u.Name,
		TotalScore:       u.TotalScore,
		ActivityCounters: u.ActivityCounters,
		Badges:           badges,
		BadgeIcons:       icons,
	}
}

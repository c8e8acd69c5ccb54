package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/greencycle/greencycle-go/internal/model"
	"github.com/greencycle/greencycle-go/internal/repository"
)

var (
	// ErrEmailTaken is returned when registering an email that already has an account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidRegistration is returned for incomplete or malformed sign-ups.
	ErrInvalidRegistration = errors.New("invalid registration")
)

const minPasswordLen = 8

// sampleCounters are applied by SeedSampleScores to users with no score yet.
var sampleCounters = model.ActivityCounters{
	DumpsReported:     5,
	SpotsAdopted:      2,
	MarketplaceSales:  3,
	CleanupSessions:   1,
	CycleTokensEarned: 50,
}

type UserService struct {
	users  UserStore
	ledger *ScoreLedger
	log    zerolog.Logger
}

func NewUserService(users UserStore, ledger *ScoreLedger, log zerolog.Logger) *UserService {
	return &UserService{users: users, ledger: ledger, log: log}
}

// Register creates an account with every activity counter at zero.
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (*model.UserResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidRegistration)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: email is not valid", ErrInvalidRegistration)
	}
	if len(req.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidRegistration, minPasswordLen)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("register: lookup email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	saved, err := s.users.Save(ctx, &model.User{
		Email:         email,
		Name:          name,
		PasswordHash:  string(hash),
		Roles:         []string{"USER"},
		WalletAddress: req.WalletAddress,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("register: save user: %w", err)
	}

	s.ledger.InvalidateLeaderboard(ctx)
	s.log.Info().Int64("user_id", saved.ID).Msg("user registered")

	return &model.UserResponse{
		ID:            saved.ID,
		Name:          saved.Name,
		Email:         saved.Email,
		WalletAddress: saved.WalletAddress,
		TotalScore:    saved.TotalScore,
		CreatedAt:     saved.CreatedAt,
	}, nil
}

// FindByEmail returns the user with the given login email, or nil when
// there is none.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// Count returns the number of registered users.
func (s *UserService) Count(ctx context.Context) (int64, error) {
	return s.users.Count(ctx)
}

// SeedSampleScores gives every user whose total score is still zero a
// fixed set of demo counters. It returns how many users were updated.
func (s *UserService) SeedSampleScores(ctx context.Context) (int, error) {
	n, err := s.users.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed: count users: %w", err)
	}
	s.log.Info().Int64("users", n).Msg("seed: checking users for sample scores")
	if n == 0 {
		return 0, nil
	}

	users, err := s.users.FindAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed: list users: %w", err)
	}

	updated := 0
	for i := range users {
		u := &users[i]
		if u.TotalScore != 0 {
			continue
		}
		u.ActivityCounters = sampleCounters
		u.TotalScore = ComputeTotalScore(u.ActivityCounters)
		if _, err := s.users.Save(ctx, u); err != nil {
			return updated, fmt.Errorf("seed: save user %d: %w", u.ID, err)
		}
		updated++
		s.log.Info().Int64("user_id", u.ID).Str("name", u.Name).Msg("seed: applied sample scores")
	}

	if updated > 0 {
		s.ledger.InvalidateLeaderboard(ctx)
	}
	return updated, nil
}

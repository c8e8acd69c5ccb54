package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/greencycle/greencycle-go/internal/model"
)

// MemoryUserRepo is an in-process UserStore. Each operation is serialized
// by a mutex; callers get copies, never references into the store.
type MemoryUserRepo struct {
	mu     sync.RWMutex
	users  []*model.User
	nextID int64
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{nextID: 1}
}

func cloneUser(u *model.User) model.User {
	c := *u
	if u.Roles != nil {
		c.Roles = append([]string(nil), u.Roles...)
	}
	return c
}

func (r *MemoryUserRepo) FindByID(_ context.Context, id int64) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.ID == id {
			c := cloneUser(u)
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			c := cloneUser(u)
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepo) FindAll(_ context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *MemoryUserRepo) FindAllOrderedByScoreDesc(ctx context.Context) ([]model.User, error) {
	users, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(users, func(i, j int) bool {
		if users[i].TotalScore != users[j].TotalScore {
			return users[i].TotalScore > users[j].TotalScore
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

func (r *MemoryUserRepo) Save(_ context.Context, u *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for _, existing := range r.users {
		if existing.Email == u.Email && existing.ID != u.ID {
			return nil, fmt.Errorf("save user %q: %w", u.Email, ErrConflict)
		}
	}

	if u.ID == 0 {
		stored := cloneUser(u)
		stored.ID = r.nextID
		stored.CreatedAt = now
		stored.UpdatedAt = now
		r.nextID++
		r.users = append(r.users, &stored)
		c := cloneUser(&stored)
		return &c, nil
	}

	for i, existing := range r.users {
		if existing.ID == u.ID {
			stored := cloneUser(u)
			stored.CreatedAt = existing.CreatedAt
			stored.UpdatedAt = now
			r.users[i] = &stored
			c := cloneUser(&stored)
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepo) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users)), nil
}

// MemoryReportRepo is an in-process ReportStore.
type MemoryReportRepo struct {
	mu      sync.RWMutex
	reports []model.DumpReport
	nextID  int64
}

func NewMemoryReportRepo() *MemoryReportRepo {
	return &MemoryReportRepo{nextID: 1}
}

func (r *MemoryReportRepo) Save(_ context.Context, report *model.DumpReport) (*model.DumpReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := *report
	saved.ID = r.nextID
	saved.CreatedAt = time.Now().UTC()
	r.nextID++
	r.reports = append(r.reports, saved)
	return &saved, nil
}

func (r *MemoryReportRepo) FindAll(_ context.Context) ([]model.DumpReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.DumpReport, len(r.reports))
	copy(out, r.reports)
	return out, nil
}

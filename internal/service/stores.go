package service

import (
	"context"

	"github.com/greencycle/greencycle-go/internal/model"
)

// UserStore is the persistence contract the services need for accounts.
// FindByID and FindByEmail report a missing user as repository.ErrNotFound.
type UserStore interface {
	FindAll(ctx context.Context) ([]model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindAllOrderedByScoreDesc(ctx context.Context) ([]model.User, error)
	Save(ctx context.Context, u *model.User) (*model.User, error)
	Count(ctx context.Context) (int64, error)
}

// ReportStore is the persistence contract for dump reports.
type ReportStore interface {
	Save(ctx context.Context, r *model.DumpReport) (*model.DumpReport, error)
	FindAll(ctx context.Context) ([]model.DumpReport, error)
}

// Catalog supplies the marketplace items searched by the SearchEngine.
type Catalog interface {
	Items() []model.MarketplaceItem
}

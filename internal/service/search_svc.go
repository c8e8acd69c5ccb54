package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/greencycle/greencycle-go/internal/metrics"
	"github.com/greencycle/greencycle-go/internal/model"
	"github.com/greencycle/greencycle-go/pkg/geo"
)

// Scope selects which entity categories a search covers.
type Scope string

const (
	ScopeAll         Scope = "all"
	ScopeDumps       Scope = "dumps"
	ScopeUsers       Scope = "users"
	ScopeMarketplace Scope = "marketplace"
)

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	switch s {
	case ScopeAll, ScopeDumps, ScopeUsers, ScopeMarketplace:
		return true
	}
	return false
}

func (s Scope) includes(target Scope) bool {
	return s == ScopeAll || s == target
}

// GeoFilter restricts dump results to a radius around a point. It is only
// active when all three fields are set.
type GeoFilter struct {
	Latitude  *float64
	Longitude *float64
	RadiusKm  *float64
}

// Active reports whether the filter applies.
func (g GeoFilter) Active() bool {
	return g.Latitude != nil && g.Longitude != nil && g.RadiusKm != nil
}

// suggestionVocabulary is the fixed list autocomplete draws from, in display order.
var suggestionVocabulary = [...]string{
	"Plastic waste",
	"Community cleanup",
	"Upcycled items",
	"Eco warriors",
	"Recycling center",
	"Green initiatives",
}

const (
	maxSuggestions        = 5
	minSuggestionQueryLen = 2
)

// SearchEngine runs unranked substring searches over full scans of the
// report store, the user store and the marketplace catalog.
type SearchEngine struct {
	reports ReportStore
	users   UserStore
	catalog Catalog
}

func NewSearchEngine(reports ReportStore, users UserStore, catalog Catalog) *SearchEngine {
	return &SearchEngine{reports: reports, users: users, catalog: catalog}
}

// Search fans out to the scopes requested, reading the report and user
// stores concurrently. Lists for scopes that were not searched stay nil;
// searched scopes always get a non-nil list.
func (e *SearchEngine) Search(ctx context.Context, query string, scope Scope, g GeoFilter) (*model.SearchResponse, error) {
	start := time.Now()
	defer func() {
		metrics.SearchDuration.Observe(time.Since(start).Seconds())
	}()
	metrics.SearchRequests.WithLabelValues(string(scope)).Inc()

	resp := &model.SearchResponse{}
	eg, egCtx := errgroup.WithContext(ctx)

	if scope.includes(ScopeDumps) {
		eg.Go(func() error {
			dumps, err := e.SearchDumps(egCtx, query, g)
			if err != nil {
				return err
			}
			resp.Dumps = dumps
			return nil
		})
	}

	if scope.includes(ScopeUsers) {
		eg.Go(func() error {
			users, err := e.SearchUsers(egCtx, query)
			if err != nil {
				return err
			}
			resp.Users = users
			return nil
		})
	}

	if scope.includes(ScopeMarketplace) {
		resp.Marketplace = e.SearchMarketplace(query)
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return resp, nil
}

// SearchDumps matches report description, location and type, then applies
// the geo filter when it is active.
func (e *SearchEngine) SearchDumps(ctx context.Context, query string, g GeoFilter) ([]model.DumpResult, error) {
	reports, err := e.reports.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("search dumps: %w", err)
	}

	results := make([]model.DumpResult, 0)
	for i := range reports {
		d := &reports[i]
		if !matchesAny(query, d.Description, d.Location, d.ReportType) {
			continue
		}

		var distance *float64
		if g.Active() {
			if !d.HasCoordinates() {
				continue
			}
			km, ok := geo.WithinRadius(*g.Latitude, *g.Longitude, *d.Latitude, *d.Longitude, *g.RadiusKm)
			if !ok {
				continue
			}
			distance = &km
		}

		results = append(results, toDumpResult(d, distance))
	}
	return results, nil
}

// SearchUsers matches user name and email.
func (e *SearchEngine) SearchUsers(ctx context.Context, query string) ([]model.UserResult, error) {
	users, err := e.users.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}

	results := make([]model.UserResult, 0)
	for i := range users {
		u := &users[i]
		if !matchesAny(query, u.Name, u.Email) {
			continue
		}
		results = append(results, model.UserResult{
			ID:            strconv.FormatInt(u.ID, 10),
			Name:          u.Name,
			Email:         u.Email,
			WalletAddress: u.WalletAddress,
			Verified:      u.HasRole("VERIFIED"),
		})
	}
	return results, nil
}

// SearchMarketplace matches item title, description, location and artisan.
func (e *SearchEngine) SearchMarketplace(query string) []model.MarketplaceItem {
	results := make([]model.MarketplaceItem, 0)
	for _, it := range e.catalog.Items() {
		if matchesAny(query, it.Title, it.Description, it.Location, it.Artisan) {
			results = append(results, it)
		}
	}
	return results
}

// Suggestions returns up to five vocabulary entries containing query,
// case-insensitively, in vocabulary order. Queries shorter than two
// characters get no suggestions.
func (e *SearchEngine) Suggestions(query string) []string {
	return suggestFrom(suggestionVocabulary[:], query)
}

func suggestFrom(vocabulary []string, query string) []string {
	out := make([]string, 0, maxSuggestions)
	if utf8.RuneCountInString(query) < minSuggestionQueryLen {
		return out
	}

	q := strings.ToLower(query)
	for _, s := range vocabulary {
		if strings.Contains(strings.ToLower(s), q) {
			out = append(out, s)
			if len(out) == maxSuggestions {
				break
			}
		}
	}
	return out
}

// matchesAny reports whether the lower-cased query is a substring of any
// field. A blank query matches everything.
func matchesAny(query string, fields ...string) bool {
	if strings.TrimSpace(query) == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func toDumpResult(d *model.DumpReport, distance *float64) model.DumpResult {
	return model.DumpResult{
		ID:          strconv.FormatInt(d.ID, 10),
		Title:       d.ReportType + " Dump",
		Description: d.Description,
		Location:    d.Location,
		PhotoURL:    d.PhotoURL,
		Latitude:    d.Latitude,
		Longitude:   d.Longitude,
		CreatedAt:   d.CreatedAt,
		Distance:    distance,
	}
}

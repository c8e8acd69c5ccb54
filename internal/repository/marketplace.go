package repository

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/greencycle/greencycle-go/internal/model"
)

// defaultMarketplaceItems is the seed catalog served until a real
// marketplace store exists.
var defaultMarketplaceItems = []model.MarketplaceItem{
	{ID: "1", Title: "Upcycled Plastic Bottles", Description: "Beautiful planters made from recycled bottles", Location: "Artisan Market", Price: 80.0, Artisan: "Felix", Verified: true},
	{ID: "2", Title: "Recycled Wood Furniture", Description: "Handcrafted furniture from reclaimed wood", Location: "Craft Market", Price: 150.0, Artisan: "Sarah", Verified: true},
	{ID: "3", Title: "Eco-friendly Bags", Description: "Bags made from recycled materials", Location: "Green Market", Price: 45.0, Artisan: "John", Verified: false},
}

// MarketplaceCatalog is a read-only, in-memory table of marketplace items.
type MarketplaceCatalog struct {
	items []model.MarketplaceItem
}

// NewMarketplaceCatalog returns the catalog seeded with the default items.
func NewMarketplaceCatalog() *MarketplaceCatalog {
	return NewMarketplaceCatalogFrom(defaultMarketplaceItems)
}

// NewMarketplaceCatalogFrom returns a catalog holding a copy of items.
func NewMarketplaceCatalogFrom(items []model.MarketplaceItem) *MarketplaceCatalog {
	c := &MarketplaceCatalog{items: make([]model.MarketplaceItem, len(items))}
	copy(c.items, items)
	return c
}

// Items returns a copy of the catalog in declaration order.
func (c *MarketplaceCatalog) Items() []model.MarketplaceItem {
	out := make([]model.MarketplaceItem, len(c.items))
	copy(out, c.items)
	return out
}

type catalogFile struct {
	Items []model.MarketplaceItem `yaml:"items"`
}

// LoadMarketplaceCatalog reads a catalog from a YAML file of the form
//
//	items:
//	  - id: "1"
//	    title: ...
//
// An empty path yields the default seed catalog.
func LoadMarketplaceCatalog(path string) (*MarketplaceCatalog, error) {
	if path == "" {
		return NewMarketplaceCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read marketplace catalog: %w", err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse marketplace catalog %s: %w", path, err)
	}

	seen := make(map[string]bool, len(f.Items))
	for i, it := range f.Items {
		if it.ID == "" {
			return nil, fmt.Errorf("marketplace catalog %s: item %d has no id", path, i)
		}
		if seen[it.ID] {
			return nil, fmt.Errorf("marketplace catalog %s: duplicate id %q", path, it.ID)
		}
		seen[it.ID] = true
	}

	return NewMarketplaceCatalogFrom(f.Items), nil
}

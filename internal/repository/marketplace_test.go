package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greencycle/greencycle-go/internal/model"
)

func TestMarketplaceCatalog_DefaultSeed(t *testing.T) {
	items := NewMarketplaceCatalog().Items()
	require.Len(t, items, 3)

	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, "Upcycled Plastic Bottles", items[0].Title)
	assert.Equal(t, 80.0, items[0].Price)
	assert.Equal(t, "Felix", items[0].Artisan)
	assert.True(t, items[0].Verified)

	assert.Equal(t, "2", items[1].ID)
	assert.Equal(t, "Recycled Wood Furniture", items[1].Title)
	assert.Equal(t, 150.0, items[1].Price)
	assert.Equal(t, "Sarah", items[1].Artisan)
	assert.True(t, items[1].Verified)

	assert.Equal(t, "3", items[2].ID)
	assert.Equal(t, "Eco-friendly Bags", items[2].Title)
	assert.Equal(t, 45.0, items[2].Price)
	assert.Equal(t, "John", items[2].Artisan)
	assert.False(t, items[2].Verified)
}

func TestMarketplaceCatalog_ItemsIsACopy(t *testing.T) {
	c := NewMarketplaceCatalog()
	items := c.Items()
	items[0].Title = "changed"

	assert.Equal(t, "Upcycled Plastic Bottles", c.Items()[0].Title)
}

func TestLoadMarketplaceCatalog_EmptyPathUsesSeed(t *testing.T) {
	c, err := LoadMarketplaceCatalog("")
	require.NoError(t, err)
	assert.Len(t, c.Items(), 3)
}

func TestLoadMarketplaceCatalog_FromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `items:
  - id: "10"
    title: Tyre Swing
    description: Swing made from an old tyre
    location: Lagos
    price: 25.5
    artisan: Ngozi
    verified: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := LoadMarketplaceCatalog(path)
	require.NoError(t, err)

	want := []model.MarketplaceItem{{
		ID:          "10",
		Title:       "Tyre Swing",
		Description: "Swing made from an old tyre",
		Location:    "Lagos",
		Price:       25.5,
		Artisan:     "Ngozi",
		Verified:    true,
	}}
	if diff := cmp.Diff(want, c.Items()); diff != "" {
		t.Errorf("catalog mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMarketplaceCatalog_Invalid(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"malformed yaml", "items: [\n"},
		{"missing id", "items:\n  - title: x\n"},
		{"duplicate id", "items:\n  - id: \"1\"\n  - id: \"1\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := LoadMarketplaceCatalog(path)
			assert.Error(t, err)
		})
	}

	_, err := LoadMarketplaceCatalog(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

package model

import "time"

// DumpResult is the search projection of a dump report.
// Distance is only set when the search carried a geo filter.
type DumpResult struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	PhotoURL    string    `json:"photoUrl"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	CreatedAt   time.Time `json:"createdAt"`
	Distance    *float64  `json:"distance"`
}

// UserResult is the search projection of a user.
type UserResult struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	WalletAddress *string `json:"walletAddress"`
	Verified      bool    `json:"verified"`
}

// MarketplaceItem is a marketplace listing. It doubles as its own search
// projection since the catalog is read-only.
type MarketplaceItem struct {
	ID          string  `json:"id" yaml:"id"`
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description" yaml:"description"`
	Location    string  `json:"location" yaml:"location"`
	Price       float64 `json:"price" yaml:"price"`
	Artisan     string  `json:"artisan" yaml:"artisan"`
	Verified    bool    `json:"verified" yaml:"verified"`
}

// SearchResponse is the composite search result. A nil slice means the scope
// was not searched and serializes as null; a searched scope with no matches
// serializes as an empty array.
type SearchResponse struct {
	Dumps       []DumpResult      `json:"dumps"`
	Users       []UserResult      `json:"users"`
	Marketplace []MarketplaceItem `json:"marketplace"`
}

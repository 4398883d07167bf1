// internal/cache/cache.go
package cache

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/atommarket/atommarket-backend/internal/chain"
	"github.com/atommarket/atommarket-backend/internal/models"
)

type SortMode string

const (
	SortNewest    SortMode = "newest" // listing id descending
	SortPriceAsc  SortMode = "price_asc"
	SortPriceDesc SortMode = "price_desc"
)

type PageParams struct {
	Page  int
	Limit int
	Sort  SortMode
}

type PageResult struct {
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	Total      int              `json:"total"`
	TotalPages int              `json:"total_pages"`
	Listings   []models.Listing `json:"listings"`
}

// ListingCache holds the most recent snapshot returned by the contract's list
// or title-search query. Sorting, pagination and local filtering run purely
// over the snapshot; only Refresh and Search touch the network. The contract
// stays authoritative — the snapshot may be stale until the next refetch.
type ListingCache struct {
	mu       sync.RWMutex
	querier  chain.Querier
	pageSize int
	listings []models.Listing
}

func NewListingCache(querier chain.Querier, pageSize int) *ListingCache {
	return &ListingCache{
		querier:  querier,
		pageSize: pageSize,
		listings: []models.Listing{},
	}
}

// Refresh refetches the bounded snapshot unconditionally. On failure the
// previous snapshot is kept and the error only logged upward: a stale read
// beats an empty page.
func (c *ListingCache) Refresh(ctx context.Context) error {
	listings, err := c.querier.AllListings(ctx, c.pageSize, nil)
	if err != nil {
		logrus.WithError(err).Warn("Listing refresh failed, keeping previous snapshot")
		return err
	}

	c.replace(listings)
	return nil
}

// Search replaces the snapshot with the contract's title-search result. A
// blank term behaves as Refresh. If the remote search fails, it falls back to
// a refreshed snapshot filtered locally by case-insensitive substring match.
func (c *ListingCache) Search(ctx context.Context, term string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return c.Refresh(ctx)
	}

	listings, err := c.querier.SearchListingsByTitle(ctx, term, c.pageSize)
	if err != nil {
		logrus.WithError(err).WithField("term", term).
			Warn("Remote title search failed, falling back to local filter")
		if refreshErr := c.Refresh(ctx); refreshErr != nil {
			return refreshErr
		}
		c.filterLocal(term)
		return nil
	}

	c.replace(listings)
	return nil
}

// Snapshot returns a copy of the cached listings in snapshot order.
func (c *ListingCache) Snapshot() []models.Listing {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Listing, len(c.listings))
	copy(out, c.listings)
	return out
}

// Get returns the cached listing with the given id, if present.
func (c *ListingCache) Get(listingID uint64) (models.Listing, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, l := range c.listings {
		if l.ListingID == listingID {
			return l, true
		}
	}
	return models.Listing{}, false
}

// Page sorts and paginates the snapshot in memory. It never triggers a
// network call.
func (c *ListingCache) Page(params PageParams) PageResult {
	listings := c.Snapshot()

	switch params.Sort {
	case SortPriceAsc:
		sort.SliceStable(listings, func(i, j int) bool { return listings[i].Price < listings[j].Price })
	case SortPriceDesc:
		sort.SliceStable(listings, func(i, j int) bool { return listings[i].Price > listings[j].Price })
	default: // newest first
		sort.SliceStable(listings, func(i, j int) bool { return listings[i].ListingID > listings[j].ListingID })
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 {
		limit = 9
	}

	total := len(listings)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return PageResult{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		Listings:   listings[start:end],
	}
}

func (c *ListingCache) replace(listings []models.Listing) {
	// Normalization happens on every ingest so consumers never see nil tags.
	for i := range listings {
		listings[i].Normalize()
	}

	c.mu.Lock()
	c.listings = listings
	c.mu.Unlock()
}

func (c *ListingCache) filterLocal(term string) {
	needle := strings.ToLower(term)

	c.mu.Lock()
	defer c.mu.Unlock()

	filtered := make([]models.Listing, 0, len(c.listings))
	for _, l := range c.listings {
		if strings.Contains(strings.ToLower(l.ListingTitle), needle) {
			filtered = append(filtered, l)
		}
	}
	c.listings = filtered
}

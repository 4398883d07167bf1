// internal/cache/cache_test.go
package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atommarket/atommarket-backend/internal/models"
)

type fakeQuerier struct {
	all        []models.Listing
	allErr     error
	searchHits map[string][]models.Listing
	searchErr  error
	allCalls   int
}

func (q *fakeQuerier) AllListings(context.Context, int, *uint64) ([]models.Listing, error) {
	q.allCalls++
	if q.allErr != nil {
		return nil, q.allErr
	}
	out := make([]models.Listing, len(q.all))
	copy(out, q.all)
	return out, nil
}

func (q *fakeQuerier) SearchListingsByTitle(_ context.Context, title string, _ int) ([]models.Listing, error) {
	if q.searchErr != nil {
		return nil, q.searchErr
	}
	return q.searchHits[title], nil
}

func (q *fakeQuerier) Listing(context.Context, uint64) (*models.Listing, error) {
	return nil, errors.New("not implemented")
}

func (q *fakeQuerier) Profile(context.Context, string) (*models.Profile, error) {
	return nil, nil
}

func listing(id uint64, title string, price int64) models.Listing {
	return models.Listing{
		ListingID:    id,
		ListingTitle: title,
		Seller:       "cosmos1seller00000000000000000000000000000000",
		Price:        price,
	}
}

func TestRefreshReplacesSnapshot(t *testing.T) {
	querier := &fakeQuerier{all: []models.Listing{listing(1, "Red Boots", 100)}}
	c := NewListingCache(querier, 50)

	require.NoError(t, c.Refresh(context.Background()))
	assert.Len(t, c.Snapshot(), 1)
}

func TestRefreshFailureKeepsPreviousSnapshot(t *testing.T) {
	querier := &fakeQuerier{all: []models.Listing{listing(1, "Red Boots", 100)}}
	c := NewListingCache(querier, 50)
	require.NoError(t, c.Refresh(context.Background()))

	querier.allErr = errors.New("rpc down")
	err := c.Refresh(context.Background())

	assert.Error(t, err)
	assert.Len(t, c.Snapshot(), 1, "stale snapshot beats an empty one")
}

func TestRefreshNormalizesTags(t *testing.T) {
	untagged := listing(1, "Red Boots", 100)
	untagged.Tags = nil
	querier := &fakeQuerier{all: []models.Listing{untagged}}
	c := NewListingCache(querier, 50)

	require.NoError(t, c.Refresh(context.Background()))

	snapshot := c.Snapshot()
	require.Len(t, snapshot, 1)
	assert.NotNil(t, snapshot[0].Tags)
	assert.Empty(t, snapshot[0].Tags)
}

func TestBlankSearchBehavesAsRefresh(t *testing.T) {
	querier := &fakeQuerier{all: []models.Listing{
		listing(1, "Red Boots", 100),
		listing(2, "Blue Hat", 50),
	}}
	c := NewListingCache(querier, 50)

	require.NoError(t, c.Search(context.Background(), "   "))

	require.NoError(t, c.Refresh(context.Background()))
	refreshed := c.Snapshot()

	require.NoError(t, c.Search(context.Background(), ""))
	assert.Equal(t, refreshed, c.Snapshot())
}

func TestSearchUsesRemoteResultWhenAvailable(t *testing.T) {
	querier := &fakeQuerier{
		all: []models.Listing{listing(1, "Red Boots", 100), listing(2, "Blue Hat", 50)},
		searchHits: map[string][]models.Listing{
			"boots": {listing(1, "Red Boots", 100)},
		},
	}
	c := NewListingCache(querier, 50)

	require.NoError(t, c.Search(context.Background(), "boots"))

	snapshot := c.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "Red Boots", snapshot[0].ListingTitle)
}

func TestSearchFallsBackToLocalSubstringFilter(t *testing.T) {
	querier := &fakeQuerier{
		all:       []models.Listing{listing(1, "Red Boots", 100), listing(2, "Blue Hat", 50)},
		searchErr: errors.New("search unavailable"),
	}
	c := NewListingCache(querier, 50)

	require.NoError(t, c.Search(context.Background(), "boots"))

	snapshot := c.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "Red Boots", snapshot[0].ListingTitle)
}

func TestPageSortsNewestFirst(t *testing.T) {
	querier := &fakeQuerier{all: []models.Listing{
		listing(1, "Old", 300),
		listing(3, "Newest", 100),
		listing(2, "Middle", 200),
	}}
	c := NewListingCache(querier, 50)
	require.NoError(t, c.Refresh(context.Background()))

	result := c.Page(PageParams{Page: 1, Limit: 9, Sort: SortNewest})

	require.Len(t, result.Listings, 3)
	assert.Equal(t, uint64(3), result.Listings[0].ListingID)
	assert.Equal(t, uint64(2), result.Listings[1].ListingID)
	assert.Equal(t, uint64(1), result.Listings[2].ListingID)
}

func TestPageSortsByPrice(t *testing.T) {
	querier := &fakeQuerier{all: []models.Listing{
		listing(1, "A", 300),
		listing(2, "B", 100),
		listing(3, "C", 200),
	}}
	c := NewListingCache(querier, 50)
	require.NoError(t, c.Refresh(context.Background()))

	asc := c.Page(PageParams{Page: 1, Limit: 9, Sort: SortPriceAsc})
	assert.Equal(t, int64(100), asc.Listings[0].Price)
	assert.Equal(t, int64(300), asc.Listings[2].Price)

	desc := c.Page(PageParams{Page: 1, Limit: 9, Sort: SortPriceDesc})
	assert.Equal(t, int64(300), desc.Listings[0].Price)
	assert.Equal(t, int64(100), desc.Listings[2].Price)
}

func TestPagePaginatesWithoutNetworkCalls(t *testing.T) {
	var all []models.Listing
	for i := uint64(1); i <= 20; i++ {
		all = append(all, listing(i, "Item", int64(i)))
	}
	querier := &fakeQuerier{all: all}
	c := NewListingCache(querier, 50)
	require.NoError(t, c.Refresh(context.Background()))

	calls := querier.allCalls
	page2 := c.Page(PageParams{Page: 2, Limit: 9, Sort: SortNewest})

	assert.Equal(t, calls, querier.allCalls, "pagination never touches the network")
	assert.Len(t, page2.Listings, 9)
	assert.Equal(t, 20, page2.Total)
	assert.Equal(t, 3, page2.TotalPages)

	page3 := c.Page(PageParams{Page: 3, Limit: 9, Sort: SortNewest})
	assert.Len(t, page3.Listings, 2)

	beyond := c.Page(PageParams{Page: 9, Limit: 9, Sort: SortNewest})
	assert.Empty(t, beyond.Listings)
}

func TestDebouncerOnlyRunsLastScheduled(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var ran atomic.Int32
	var last atomic.Int32

	for i := int32(1); i <= 5; i++ {
		i := i
		d.Schedule(func() {
			ran.Add(1)
			last.Store(i)
		})
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(80 * time.Millisecond)

	assert.Equal(t, int32(1), ran.Load(), "only the final schedule may fire")
	assert.Equal(t, int32(5), last.Load())
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var ran atomic.Int32

	d.Schedule(func() { ran.Add(1) })
	d.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, ran.Load())
}

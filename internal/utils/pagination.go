// internal/utils/pagination.go
package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/atommarket/atommarket-backend/internal/cache"
)

// GetPageParams reads sort/page parameters off the request. Pagination is
// always computed over the in-memory snapshot, never pushed to the contract.
func GetPageParams(c *gin.Context) cache.PageParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "9"))
	sortMode := cache.SortMode(c.DefaultQuery("sort", string(cache.SortNewest)))

	// Validate and set defaults
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 9
	}
	switch sortMode {
	case cache.SortNewest, cache.SortPriceAsc, cache.SortPriceDesc:
	default:
		sortMode = cache.SortNewest
	}

	return cache.PageParams{
		Page:  page,
		Limit: limit,
		Sort:  sortMode,
	}
}

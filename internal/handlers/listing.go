// internal/handlers/listing.go
package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atommarket/atommarket-backend/internal/cache"
	"github.com/atommarket/atommarket-backend/internal/chain"
	"github.com/atommarket/atommarket-backend/internal/middleware"
	"github.com/atommarket/atommarket-backend/internal/services"
	"github.com/atommarket/atommarket-backend/internal/utils"
)

type ListingHandler struct {
	listingService *services.ListingService
	listingCache   *cache.ListingCache
	debouncer      *cache.Debouncer
}

func NewListingHandler(listingService *services.ListingService, listingCache *cache.ListingCache, debounceWindow time.Duration) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
		listingCache:   listingCache,
		debouncer:      cache.NewDebouncer(debounceWindow),
	}
}

// GET /listings
//
// Served from the in-memory snapshot; sorting and pagination never hit the
// contract. Pass refresh=true to refetch first.
func (h *ListingHandler) GetListings(c *gin.Context) {
	if c.Query("refresh") == "true" {
		// Read path failures keep the previous snapshot; stale beats empty.
		_ = h.listingCache.Refresh(c.Request.Context())
	}

	params := utils.GetPageParams(c)
	result := h.listingCache.Page(params)

	utils.SuccessResponseWithMeta(c, result.Listings, gin.H{
		"page":        result.Page,
		"limit":       result.Limit,
		"total":       result.Total,
		"total_pages": result.TotalPages,
	})
}

// GET /listings/search?q=term
func (h *ListingHandler) SearchListings(c *gin.Context) {
	term := c.Query("q")

	_ = h.listingCache.Search(c.Request.Context(), term)

	params := utils.GetPageParams(c)
	result := h.listingCache.Page(params)

	utils.SuccessResponseWithMeta(c, result.Listings, gin.H{
		"page":        result.Page,
		"limit":       result.Limit,
		"total":       result.Total,
		"total_pages": result.TotalPages,
		"term":        strings.TrimSpace(term),
	})
}

// POST /listings/search/typeahead {"q": "..."}
//
// Keystroke endpoint: answers immediately from the current snapshot while
// scheduling the remote search behind the debounce window. Rapid keystrokes
// cancel the pending search; only the final term reaches the contract.
func (h *ListingHandler) TypeaheadSearch(c *gin.Context) {
	var req struct {
		Q string `json:"q"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid search payload", nil)
		return
	}

	term := req.Q
	h.debouncer.Schedule(func() {
		// Detached from the request: the response below has already gone out.
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = h.listingCache.Search(ctx, term)
	})

	params := utils.GetPageParams(c)
	utils.SuccessResponse(c, h.listingCache.Page(params).Listings)
}

// GET /listings/:id
func (h *ListingHandler) GetListing(c *gin.Context) {
	listingID, ok := parseListingID(c)
	if !ok {
		return
	}

	listing, err := h.listingService.GetListing(c.Request.Context(), listingID)
	if err != nil {
		if errors.Is(err, chain.ErrMalformedResponse) {
			utils.UpstreamErrorResponse(c, err.Error())
			return
		}
		utils.NotFoundResponse(c, "listing not found")
		return
	}

	utils.SuccessResponse(c, listing)
}

// POST /listings (multipart: title, text, tags, contact, price, images[])
func (h *ListingHandler) CreateListing(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, "expected multipart form", nil)
		return
	}

	req := &services.CreateListingRequest{
		Title:   c.PostForm("title"),
		Text:    c.PostForm("text"),
		Contact: c.PostForm("contact"),
		Price:   c.PostForm("price"),
	}
	if rawTags := c.PostForm("tags"); rawTags != "" {
		for _, tag := range strings.Split(rawTags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				req.Tags = append(req.Tags, tag)
			}
		}
	}

	files := form.File["images"]
	opened := make([]interface{ Close() error }, 0, len(files))
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			utils.BadRequestResponse(c, "unreadable image upload", nil)
			return
		}
		opened = append(opened, file)
		req.Images = append(req.Images, services.ImageBlob{Name: header.Filename, Data: file})
	}

	result, err := h.listingService.Create(c.Request.Context(), middleware.SessionAddress(c), req)
	if err != nil {
		respondListingError(c, err)
		return
	}

	utils.CreatedResponse(c, result)
}

// POST /listings/:id/purchase
func (h *ListingHandler) Purchase(c *gin.Context) {
	h.transition(c, h.listingService.Purchase)
}

// POST /listings/:id/ship
func (h *ListingHandler) MarkShipped(c *gin.Context) {
	h.transition(c, h.listingService.MarkShipped)
}

// POST /listings/:id/receive
func (h *ListingHandler) MarkReceived(c *gin.Context) {
	h.transition(c, h.listingService.MarkReceived)
}

// POST /listings/:id/arbitrate
func (h *ListingHandler) RequestArbitration(c *gin.Context) {
	h.transition(c, h.listingService.RequestArbitration)
}

// POST /listings/:id/cancel
func (h *ListingHandler) Cancel(c *gin.Context) {
	h.transition(c, h.listingService.Cancel)
}

// DELETE /listings/:id
func (h *ListingHandler) DeleteListing(c *gin.Context) {
	h.transition(c, h.listingService.Delete)
}

type transitionFunc func(ctx context.Context, sender string, listingID uint64) (*chain.ExecuteResult, error)

func (h *ListingHandler) transition(c *gin.Context, fn transitionFunc) {
	listingID, ok := parseListingID(c)
	if !ok {
		return
	}

	result, err := fn(c.Request.Context(), middleware.SessionAddress(c), listingID)
	if err != nil {
		respondListingError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

func parseListingID(c *gin.Context) (uint64, bool) {
	listingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || listingID == 0 {
		utils.BadRequestResponse(c, "invalid listing id", nil)
		return 0, false
	}
	return listingID, true
}

// respondListingError maps the error taxonomy onto HTTP: identity problems
// are 401, role guards 403, state guards 409, validation 400, and contract or
// gateway failures 502. Guard rejections never reached the chain.
func respondListingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chain.ErrNoSigner):
		utils.UnauthorizedResponse(c, err.Error())
	case errors.Is(err, services.ErrNotSeller),
		errors.Is(err, services.ErrNotBuyer),
		errors.Is(err, services.ErrNotParticipant),
		errors.Is(err, services.ErrOwnListing):
		utils.ForbiddenResponse(c, err.Error())
	case errors.Is(err, services.ErrAlreadyBought),
		errors.Is(err, services.ErrNotBought),
		errors.Is(err, services.ErrAlreadyShipped),
		errors.Is(err, services.ErrNotShipped),
		errors.Is(err, services.ErrAlreadyReceived),
		errors.Is(err, services.ErrArbitrationPending),
		errors.Is(err, services.ErrListingBought):
		utils.ConflictResponse(c, err.Error())
	case errors.Is(err, services.ErrInvalidPrice),
		errors.Is(err, services.ErrNoImages),
		errors.Is(err, services.ErrTooManyImages):
		utils.BadRequestResponse(c, err.Error(), nil)
	default:
		utils.UpstreamErrorResponse(c, err.Error())
	}
}

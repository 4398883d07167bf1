// internal/services/listing_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/atommarket/atommarket-backend/internal/cache"
	"github.com/atommarket/atommarket-backend/internal/chain"
	"github.com/atommarket/atommarket-backend/internal/metrics"
	"github.com/atommarket/atommarket-backend/internal/models"
	"github.com/atommarket/atommarket-backend/internal/utils"
)

// Guard errors. Guards are advisory: the contract is the final arbiter, and a
// remote rejection is authoritative even when the local guard predicted
// success. None of these ever reach the chain.
var (
	ErrOwnListing         = errors.New("seller cannot purchase own listing")
	ErrAlreadyBought      = errors.New("listing is already bought")
	ErrNotBought          = errors.New("listing has not been bought")
	ErrAlreadyShipped     = errors.New("listing is already shipped")
	ErrNotShipped         = errors.New("listing has not been shipped")
	ErrAlreadyReceived    = errors.New("listing is already received")
	ErrArbitrationPending = errors.New("arbitration already requested")
	ErrNotSeller          = errors.New("only the seller may perform this action")
	ErrNotBuyer           = errors.New("only the buyer may perform this action")
	ErrNotParticipant     = errors.New("only the buyer or the seller may perform this action")
	ErrListingBought      = errors.New("bought listings cannot be deleted")
	ErrInvalidPrice       = errors.New("invalid price")
)

type CreateListingRequest struct {
	Title   string   `json:"title" validate:"required,min=3,max=255"`
	Text    string   `json:"text" validate:"required,min=10"`
	Tags    []string `json:"tags,omitempty"`
	Contact string   `json:"contact" validate:"required"`
	Price   string   `json:"price" validate:"required"` // display units, e.g. "2.5"
	Images  []ImageBlob
}

// ListingService drives the lifecycle of a listing: it validates the caller's
// permitted transition, issues exactly one signed call to the contract, and
// refreshes the query cache before reporting success. It never applies an
// optimistic local mutation and never retries a rejected call. The acting
// identity arrives as a per-call parameter.
type ListingService struct {
	querier     chain.Querier
	executor    chain.Executor
	media       *MediaService
	cache       *cache.ListingCache
	denom       string
	denomFactor int64
}

func NewListingService(querier chain.Querier, executor chain.Executor, media *MediaService,
	listingCache *cache.ListingCache, denom string, denomFactor int64) *ListingService {
	return &ListingService{
		querier:     querier,
		executor:    executor,
		media:       media,
		cache:       listingCache,
		denom:       denom,
		denomFactor: denomFactor,
	}
}

// GetListing fetches a single listing straight from the contract.
func (s *ListingService) GetListing(ctx context.Context, listingID uint64) (*models.Listing, error) {
	return s.querier.Listing(ctx, listingID)
}

// Create composes the media bundle (if any), then issues create_listing. A
// compose failure aborts before any contract mutation: no listing is created.
func (s *ListingService) Create(ctx context.Context, sender string, req *CreateListingRequest) (*chain.ExecuteResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	price, err := s.toChainPrice(req.Price)
	if err != nil {
		return nil, err
	}

	externalID := ""
	if len(req.Images) > 0 {
		externalID, err = s.media.Compose(ctx, req.Images)
		if err != nil {
			return nil, fmt.Errorf("media upload failed: %w", err)
		}
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	msg := chain.ExecuteMsg{CreateListing: &chain.CreateListingMsg{
		ListingTitle: req.Title,
		ExternalID:   externalID,
		Text:         req.Text,
		Tags:         tags,
		Contact:      req.Contact,
		Price:        price,
	}}

	result, err := s.execute(ctx, sender, "create", msg, nil)
	if err != nil {
		return nil, err
	}

	s.refresh(ctx, "create")
	return result, nil
}

// Purchase attaches funds equal to the listing price.
func (s *ListingService) Purchase(ctx context.Context, sender string, listingID uint64) (*chain.ExecuteResult, error) {
	listing, err := s.querier.Listing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.IsSeller(sender) {
		return nil, ErrOwnListing
	}
	if listing.Bought {
		return nil, ErrAlreadyBought
	}

	funds := []chain.Coin{{Denom: s.denom, Amount: strconv.FormatInt(listing.Price, 10)}}
	msg := chain.ExecuteMsg{Purchase: &chain.PurchaseMsg{ListingID: listingID}}

	result, err := s.execute(ctx, sender, "purchase", msg, funds)
	if err != nil {
		return nil, err
	}

	s.refresh(ctx, "purchase")
	return result, nil
}

func (s *ListingService) MarkShipped(ctx context.Context, sender string, listingID uint64) (*chain.ExecuteResult, error) {
	listing, err := s.querier.Listing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !listing.IsSeller(sender) {
		return nil, ErrNotSeller
	}
	if !listing.Bought {
		return nil, ErrNotBought
	}
	if listing.Shipped {
		return nil, ErrAlreadyShipped
	}

	msg := chain.ExecuteMsg{SignShipped: &chain.SignShippedMsg{ListingID: listingID}}
	result, err := s.execute(ctx, sender, "mark-shipped", msg, nil)
	if err != nil {
		return nil, err
	}

	s.refresh(ctx, "mark-shipped")
	return result, nil
}

// MarkReceived is a terminal transition: after the contract commits, the
// media bundle is released. The release runs in its own failure domain —
// an unpin failure never unwinds the outcome reported to the caller.
func (s *ListingService) MarkReceived(ctx context.Context, sender string, listingID uint64) (*chain.ExecuteResult, error) {
	listing, err := s.querier.Listing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !listing.IsBuyer(sender) {
		return nil, ErrNotBuyer
	}
	if !listing.Shipped {
		return nil, ErrNotShipped
	}
	if listing.Received {
		return nil, ErrAlreadyReceived
	}

	msg := chain.ExecuteMsg{SignReceived: &chain.SignReceivedMsg{ListingID: listingID}}
	result, err := s.execute(ctx, sender, "mark-received", msg, nil)
	if err != nil {
		return nil, err
	}

	s.media.Release(ctx, listing.ExternalID)
	s.refresh(ctx, "mark-received")
	return result, nil
}

// RequestArbitration may be raised by either party while shipped goods are
// unconfirmed. Arbitration is terminal here; resolution is a manual process
// and the media bundle stays pinned as evidence.
func (s *ListingService) RequestArbitration(ctx context.Context, sender string, listingID uint64) (*chain.ExecuteResult, error) {
	listing, err := s.querier.Listing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !listing.IsSeller(sender) && !listing.IsBuyer(sender) {
		return nil, ErrNotParticipant
	}
	if !listing.Shipped {
		return nil, ErrNotShipped
	}
	if listing.Received {
		return nil, ErrAlreadyReceived
	}
	if listing.ArbitrationRequested {
		return nil, ErrArbitrationPending
	}

	msg := chain.ExecuteMsg{RequestArbitration: &chain.RequestArbitrationMsg{ListingID: listingID}}
	result, err := s.execute(ctx, sender, "request-arbitration", msg, nil)
	if err != nil {
		return nil, err
	}

	s.refresh(ctx, "request-arbitration")
	return result, nil
}

// Cancel unwinds an unshipped sale. The contract exposes distinct messages
// for the two roles; the caller's role picks the one to issue.
func (s *ListingService) Cancel(ctx context.Context, sender string, listingID uint64) (*chain.ExecuteResult, error) {
	listing, err := s.querier.Listing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !listing.Bought {
		return nil, ErrNotBought
	}
	if listing.Shipped {
		return nil, ErrAlreadyShipped
	}

	var msg chain.ExecuteMsg
	switch {
	case listing.IsSeller(sender):
		msg = chain.ExecuteMsg{SellerCancelSale: &chain.SellerCancelSaleMsg{ListingID: listingID}}
	case listing.IsBuyer(sender):
		msg = chain.ExecuteMsg{CancelPurchase: &chain.CancelPurchaseMsg{ListingID: listingID}}
	default:
		return nil, ErrNotParticipant
	}

	result, err := s.execute(ctx, sender, "cancel", msg, nil)
	if err != nil {
		return nil, err
	}

	s.refresh(ctx, "cancel")
	return result, nil
}

// Delete removes an unsold listing and releases its media bundle.
func (s *ListingService) Delete(ctx context.Context, sender string, listingID uint64) (*chain.ExecuteResult, error) {
	listing, err := s.querier.Listing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !listing.IsSeller(sender) {
		return nil, ErrNotSeller
	}
	if listing.Bought {
		return nil, ErrListingBought
	}

	msg := chain.ExecuteMsg{DeleteListing: &chain.DeleteListingMsg{ListingID: listingID}}
	result, err := s.execute(ctx, sender, "delete", msg, nil)
	if err != nil {
		return nil, err
	}

	s.media.Release(ctx, listing.ExternalID)
	s.refresh(ctx, "delete")
	return result, nil
}

// execute issues the single signed call for a transition and records its
// outcome. A rejection is authoritative and never retried here.
func (s *ListingService) execute(ctx context.Context, sender, event string, msg chain.ExecuteMsg, funds []chain.Coin) (*chain.ExecuteResult, error) {
	result, err := s.executor.Execute(ctx, sender, msg, funds)
	if err != nil {
		metrics.TransitionsTotal.WithLabelValues(event, "rejected").Inc()
		return nil, err
	}
	metrics.TransitionsTotal.WithLabelValues(event, "success").Inc()
	return result, nil
}

// refresh implements the refetch-then-notify contract: success is reported
// only after the cache has been told to refetch. A refresh failure is a read
// path problem and does not demote the already-committed mutation.
func (s *ListingService) refresh(ctx context.Context, event string) {
	if err := s.cache.Refresh(ctx); err != nil {
		logrus.WithError(err).WithField("event", event).Warn("Post-transition cache refresh failed")
	}
}

// toChainPrice converts a display price ("2.5") into the smallest
// denomination unit (2500000 at factor 1,000,000), flooring fractions.
func (s *ListingService) toChainPrice(display string) (int64, error) {
	price, err := strconv.ParseFloat(display, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, display)
	}
	if price <= 0 {
		return 0, fmt.Errorf("%w: must be positive", ErrInvalidPrice)
	}
	return int64(math.Floor(price * float64(s.denomFactor))), nil
}

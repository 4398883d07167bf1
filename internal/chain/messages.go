// internal/chain/messages.go
package chain

import (
	"github.com/atommarket/atommarket-backend/internal/models"
)

// Query messages. The contract expects a single-key JSON object per message,
// so every envelope field is a pointer with omitempty and exactly one is set.

type QueryMsg struct {
	AllListings           *AllListingsQuery           `json:"all_listings,omitempty"`
	SearchListingsByTitle *SearchListingsByTitleQuery `json:"search_listings_by_title,omitempty"`
	Listing               *ListingQuery               `json:"listing,omitempty"`
	Profile               *ProfileQuery               `json:"profile,omitempty"`
}

type AllListingsQuery struct {
	Limit      int     `json:"limit"`
	StartAfter *uint64 `json:"start_after"`
}

type SearchListingsByTitleQuery struct {
	Title string `json:"title"`
	Limit int    `json:"limit"`
}

type ListingQuery struct {
	ListingID uint64 `json:"listing_id"`
}

type ProfileQuery struct {
	Address string `json:"address"`
}

// Execute messages.

type ExecuteMsg struct {
	CreateListing      *CreateListingMsg      `json:"create_listing,omitempty"`
	DeleteListing      *DeleteListingMsg      `json:"delete_listing,omitempty"`
	Purchase           *PurchaseMsg           `json:"purchase,omitempty"`
	SignShipped        *SignShippedMsg        `json:"sign_shipped,omitempty"`
	SignReceived       *SignReceivedMsg       `json:"sign_received,omitempty"`
	SellerCancelSale   *SellerCancelSaleMsg   `json:"seller_cancel_sale,omitempty"`
	CancelPurchase     *CancelPurchaseMsg     `json:"cancel_purchase,omitempty"`
	RequestArbitration *RequestArbitrationMsg `json:"request_arbitration,omitempty"`
	CreateProfile      *CreateProfileMsg      `json:"create_profile,omitempty"`
	DeleteProfile      *DeleteProfileMsg      `json:"delete_profile,omitempty"`
}

type CreateListingMsg struct {
	ListingTitle string   `json:"listing_title"`
	ExternalID   string   `json:"external_id"`
	Text         string   `json:"text"`
	Tags         []string `json:"tags"`
	Contact      string   `json:"contact"`
	Price        int64    `json:"price"`
}

type DeleteListingMsg struct {
	ListingID uint64 `json:"listing_id"`
}

type PurchaseMsg struct {
	ListingID uint64 `json:"listing_id"`
}

type SignShippedMsg struct {
	ListingID uint64 `json:"listing_id"`
}

type SignReceivedMsg struct {
	ListingID uint64 `json:"listing_id"`
}

type SellerCancelSaleMsg struct {
	ListingID uint64 `json:"listing_id"`
}

type CancelPurchaseMsg struct {
	ListingID uint64 `json:"listing_id"`
}

type RequestArbitrationMsg struct {
	ListingID uint64 `json:"listing_id"`
}

type CreateProfileMsg struct {
	ProfileName string `json:"profile_name"`
}

type DeleteProfileMsg struct{}

// Query responses.

type ListingsResponse struct {
	Listings []models.Listing `json:"listings"`
}

type ListingResponse struct {
	Listing *models.Listing `json:"listing"`
}

type ProfileResponse struct {
	Profile *models.Profile `json:"profile"`
}

// Coin is an amount of a chain denomination, serialized the way the chain
// expects (amount as a decimal string).
type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// ExecuteResult is what a successful broadcast reports back.
type ExecuteResult struct {
	TxHash string `json:"txhash"`
	Height int64  `json:"height"`
	RawLog string `json:"raw_log"`
}

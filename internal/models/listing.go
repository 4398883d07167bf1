// internal/models/listing.go
package models

// Listing mirrors the contract's listing schema. The authoritative copy lives
// in the contract; instances held here are read-only snapshots and may be
// stale between refetches.
type Listing struct {
	ListingID            uint64   `json:"listing_id"`
	ListingTitle         string   `json:"listing_title"`
	ExternalID           string   `json:"external_id"` // media manifest URL, or empty
	Text                 string   `json:"text"`
	Tags                 []string `json:"tags"`
	Seller               string   `json:"seller"`
	Contact              string   `json:"contact"`
	Price                int64    `json:"price"` // smallest denomination unit
	Buyer                *string  `json:"buyer"`
	Bought               bool     `json:"bought"`
	Shipped              bool     `json:"shipped"`
	Received             bool     `json:"received"`
	ArbitrationRequested bool     `json:"arbitration_requested"`
}

// Normalize repairs fields the contract may omit. Tags in particular are
// optional on chain but must never be null toward consumers.
func (l *Listing) Normalize() {
	if l.Tags == nil {
		l.Tags = []string{}
	}
}

// BuyerAddress returns the buyer identity or the empty string when unsold.
func (l *Listing) BuyerAddress() string {
	if l.Buyer == nil {
		return ""
	}
	return *l.Buyer
}

func (l *Listing) IsSeller(address string) bool {
	return address != "" && address == l.Seller
}

func (l *Listing) IsBuyer(address string) bool {
	return address != "" && address == l.BuyerAddress()
}

// ConsistentFlags checks the lifecycle flag implications the contract
// guarantees: shipped implies bought, received implies shipped, and buyer is
// set exactly when bought.
func (l *Listing) ConsistentFlags() bool {
	if l.Shipped && !l.Bought {
		return false
	}
	if l.Received && !l.Shipped {
		return false
	}
	if l.Bought != (l.Buyer != nil && *l.Buyer != "") {
		return false
	}
	return true
}

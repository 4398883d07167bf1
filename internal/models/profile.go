// internal/models/profile.go
package models

// Profile is the contract's per-address seller/buyer profile.
type Profile struct {
	ProfileName      string `json:"profile_name"`
	TransactionCount int    `json:"transaction_count"`
	Ratings          int    `json:"ratings"`
	RatingCount      int    `json:"rating_count"`
}

// AverageRating is computed client side; the contract stores the raw sums.
func (p *Profile) AverageRating() float64 {
	if p.RatingCount == 0 {
		return 0
	}
	return float64(p.Ratings) / float64(p.RatingCount)
}

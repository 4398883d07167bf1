// internal/models/manifest.go
package models

// ManifestImage is one entry of a media manifest: the pinned CID plus a
// gateway URL that dereferences it.
type ManifestImage struct {
	CID string `json:"cid"`
	URL string `json:"url"`
}

// Manifest aggregates the image CIDs of a single listing. It is stored on the
// media gateway and addressed by its own CID; the listing's external_id holds
// the gateway URL of that CID. Entries preserve upload order. Never mutated
// after creation.
type Manifest struct {
	Images []ManifestImage `json:"images"`
}

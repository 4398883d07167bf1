// internal/chain/client.go
package chain

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/atommarket/atommarket-backend/internal/config"
	"github.com/atommarket/atommarket-backend/internal/models"
)

// Querier issues read-only smart queries against the marketplace contract.
type Querier interface {
	AllListings(ctx context.Context, limit int, startAfter *uint64) ([]models.Listing, error)
	SearchListingsByTitle(ctx context.Context, title string, limit int) ([]models.Listing, error)
	Listing(ctx context.Context, listingID uint64) (*models.Listing, error)
	Profile(ctx context.Context, address string) (*models.Profile, error)
}

// Executor issues signed state-changing calls against the contract.
type Executor interface {
	Execute(ctx context.Context, sender string, msg ExecuteMsg, funds []Coin) (*ExecuteResult, error)
}

// Client talks to the contract through a wasmd LCD endpoint for queries and a
// Signer for executes. It holds no listing state of its own.
type Client struct {
	lcdURL   string
	contract string
	chainID  string
	gasLimit string
	signer   Signer
	http     *http.Client
}

func NewClient(cfg config.ChainConfig) *Client {
	var signer Signer
	if cfg.SignerEndpoint != "" {
		signer = NewRemoteSigner(cfg.SignerEndpoint)
	}
	return &Client{
		lcdURL:   strings.TrimRight(cfg.LCDEndpoint, "/"),
		contract: cfg.ContractAddress,
		chainID:  cfg.ChainID,
		gasLimit: cfg.GasLimit,
		signer:   signer,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWithSigner is the constructor used by tests and by deployments
// that embed their own signing agent.
func NewClientWithSigner(cfg config.ChainConfig, signer Signer) *Client {
	c := NewClient(cfg)
	c.signer = signer
	return c
}

func (c *Client) smartQuery(ctx context.Context, msg QueryMsg, out interface{}) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode query: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(raw)
	reqURL := fmt.Sprintf("%s/cosmwasm/wasm/v1/contract/%s/smart/%s", c.lcdURL, c.contract, encoded)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("contract query failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("contract query returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	// The LCD wraps the contract's reply in {"data": ...}.
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(envelope.Data) == 0 {
		return fmt.Errorf("%w: missing data field", ErrMalformedResponse)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func (c *Client) AllListings(ctx context.Context, limit int, startAfter *uint64) ([]models.Listing, error) {
	var resp ListingsResponse
	msg := QueryMsg{AllListings: &AllListingsQuery{Limit: limit, StartAfter: startAfter}}
	if err := c.smartQuery(ctx, msg, &resp); err != nil {
		return nil, err
	}
	return validateListings(resp.Listings)
}

func (c *Client) SearchListingsByTitle(ctx context.Context, title string, limit int) ([]models.Listing, error) {
	var resp ListingsResponse
	msg := QueryMsg{SearchListingsByTitle: &SearchListingsByTitleQuery{Title: title, Limit: limit}}
	if err := c.smartQuery(ctx, msg, &resp); err != nil {
		return nil, err
	}
	return validateListings(resp.Listings)
}

func (c *Client) Listing(ctx context.Context, listingID uint64) (*models.Listing, error) {
	var resp ListingResponse
	msg := QueryMsg{Listing: &ListingQuery{ListingID: listingID}}
	if err := c.smartQuery(ctx, msg, &resp); err != nil {
		return nil, err
	}
	if resp.Listing == nil {
		return nil, fmt.Errorf("%w: missing listing field", ErrMalformedResponse)
	}
	if err := validateListing(resp.Listing); err != nil {
		return nil, err
	}
	resp.Listing.Normalize()
	return resp.Listing, nil
}

// Profile returns nil without error when the address has no profile; absence
// is a legitimate contract answer, not a failure.
func (c *Client) Profile(ctx context.Context, address string) (*models.Profile, error) {
	var resp ProfileResponse
	msg := QueryMsg{Profile: &ProfileQuery{Address: address}}
	if err := c.smartQuery(ctx, msg, &resp); err != nil {
		return nil, err
	}
	return resp.Profile, nil
}

func (c *Client) Execute(ctx context.Context, sender string, msg ExecuteMsg, funds []Coin) (*ExecuteResult, error) {
	if c.signer == nil {
		return nil, ErrNoSigner
	}
	if sender == "" {
		return nil, fmt.Errorf("%w: empty sender address", ErrNoSigner)
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode execute: %w", err)
	}

	result, err := c.signer.SignAndBroadcast(ctx, SignRequest{
		ChainID:  c.chainID,
		Sender:   sender,
		Contract: c.contract,
		Msg:      raw,
		Funds:    funds,
		GasLimit: c.gasLimit,
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"txhash": result.TxHash,
		"sender": sender,
	}).Debug("Contract execute broadcast")
	return result, nil
}

// validateListings enforces the response schema at the boundary so absent
// fields surface as a distinct error instead of zero values downstream.
func validateListings(listings []models.Listing) ([]models.Listing, error) {
	for i := range listings {
		if err := validateListing(&listings[i]); err != nil {
			return nil, err
		}
		listings[i].Normalize()
	}
	return listings, nil
}

func validateListing(l *models.Listing) error {
	if l.ListingID == 0 {
		return fmt.Errorf("%w: listing missing listing_id", ErrMalformedResponse)
	}
	if l.Seller == "" {
		return fmt.Errorf("%w: listing %d missing seller", ErrMalformedResponse, l.ListingID)
	}
	if l.ListingTitle == "" {
		return fmt.Errorf("%w: listing %d missing title", ErrMalformedResponse, l.ListingID)
	}
	if !l.ConsistentFlags() {
		return fmt.Errorf("%w: listing %d has inconsistent lifecycle flags", ErrMalformedResponse, l.ListingID)
	}
	return nil
}

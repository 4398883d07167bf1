// internal/chain/signer.go
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SignRequest is the unit of work handed to a signing agent: one contract
// execute on behalf of sender, plus any funds to attach.
type SignRequest struct {
	ChainID  string          `json:"chain_id"`
	Sender   string          `json:"sender"`
	Contract string          `json:"contract"`
	Msg      json.RawMessage `json:"msg"`
	Funds    []Coin          `json:"funds,omitempty"`
	GasLimit string          `json:"gas_limit"`
}

// Signer signs and broadcasts a single contract execute. The wallet handshake
// itself (key management, chain suggestion) stays outside this service; all
// the ledger client needs is something able to issue calls for an address.
type Signer interface {
	SignAndBroadcast(ctx context.Context, req SignRequest) (*ExecuteResult, error)
}

// remoteSigner delegates to an HTTP signing agent.
type remoteSigner struct {
	endpoint string
	client   *http.Client
}

func NewRemoteSigner(endpoint string) Signer {
	return &remoteSigner{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *remoteSigner) SignAndBroadcast(ctx context.Context, req SignRequest) (*ExecuteResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sign request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"/sign", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("signing agent unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: signing agent returned %s: %s",
			ErrExecuteRejected, resp.Status, strings.TrimSpace(string(raw)))
	}

	var result ExecuteResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode broadcast result: %w", err)
	}
	if result.TxHash == "" {
		return nil, fmt.Errorf("%w: broadcast result missing txhash", ErrMalformedResponse)
	}
	return &result, nil
}

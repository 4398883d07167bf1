// internal/ipfs/client.go
package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/atommarket/atommarket-backend/internal/config"
)

// Client talks to the pinning worker: binary and JSON uploads return a CID,
// unpin releases one. Retrieval URLs are built against the public gateway.
type Client struct {
	workerURL     string
	publicGateway string
	http          *http.Client
}

type uploadResponse struct {
	CID string `json:"cid"`
}

func NewClient(cfg config.MediaConfig) *Client {
	return &Client{
		workerURL:     strings.TrimRight(cfg.WorkerURL, "/"),
		publicGateway: strings.TrimRight(cfg.PublicGateway, "/"),
		http:          &http.Client{Timeout: time.Duration(cfg.UploadTimeout) * time.Second},
	}
}

// UploadFile pins a binary blob and returns its CID.
func (c *Client) UploadFile(ctx context.Context, name string, data io.Reader) (string, error) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		defer pw.Close()
		part, err := writer.CreateFormFile("file", name)
		if err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, data); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		_ = writer.Close()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.workerURL+"/upload", pr)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.doUpload(req)
}

// UploadJSON pins a JSON document and returns its CID.
func (c *Client) UploadJSON(ctx context.Context, doc interface{}) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.workerURL+"/upload/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doUpload(req)
}

func (c *Client) doUpload(req *http.Request) (string, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("media upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		if len(body) == 0 {
			return "", fmt.Errorf("media upload failed: %s", resp.Status)
		}
		return "", fmt.Errorf("media upload failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var result uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if result.CID == "" {
		return "", fmt.Errorf("media upload returned empty cid")
	}
	return result.CID, nil
}

// Unpin releases a pinned CID. A missing CID is rejected before any call.
func (c *Client) Unpin(ctx context.Context, cid string) error {
	if strings.TrimSpace(cid) == "" {
		return fmt.Errorf("unpin missing cid")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.workerURL+"/unpin/"+cid, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("unpin failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unpin failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return nil
}

// GatewayURL builds the public retrieval URL for a CID.
func (c *Client) GatewayURL(cid string) string {
	return fmt.Sprintf("%s/ipfs/%s", c.publicGateway, cid)
}

// internal/ipfs/client_test.go
package ipfs

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atommarket/atommarket-backend/internal/config"
)

func newTestClient(workerURL string) *Client {
	return NewClient(config.MediaConfig{
		WorkerURL:     workerURL,
		PublicGateway: "https://gateway.pinata.cloud",
		UploadTimeout: 5,
	})
}

func TestUploadFileStreamsMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/upload", r.URL.Path)

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "photo.jpg", header.Filename)

		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "jpeg-bytes", string(data))

		json.NewEncoder(w).Encode(map[string]string{"cid": "QmPhoto"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	cid, err := client.UploadFile(context.Background(), "photo.jpg", strings.NewReader("jpeg-bytes"))

	require.NoError(t, err)
	assert.Equal(t, "QmPhoto", cid)
}

func TestUploadJSONPostsDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload/json", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"images":[{"cid":"QmA","url":"https://gateway.pinata.cloud/ipfs/QmA"}]}`, string(body))

		json.NewEncoder(w).Encode(map[string]string{"cid": "QmManifest"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	cid, err := client.UploadJSON(context.Background(), map[string]interface{}{
		"images": []map[string]string{{"cid": "QmA", "url": "https://gateway.pinata.cloud/ipfs/QmA"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "QmManifest", cid)
}

func TestUploadErrorsIncludeWorkerBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "pin quota exceeded", http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.UploadJSON(context.Background(), map[string]string{"x": "y"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "pin quota exceeded")
}

func TestUploadRejectsEmptyCID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.UploadJSON(context.Background(), map[string]string{"x": "y"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty cid")
}

func TestUnpinDeletesByCID(t *testing.T) {
	var gotPath, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	err := client.Unpin(context.Background(), "QmGone")

	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/unpin/QmGone", gotPath)
}

func TestUnpinRejectsBlankCIDWithoutNetwork(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	err := client.Unpin(context.Background(), "   ")

	require.Error(t, err)
	assert.False(t, called)
}

func TestGatewayURL(t *testing.T) {
	client := newTestClient("http://worker.invalid")
	assert.Equal(t, "https://gateway.pinata.cloud/ipfs/QmABC", client.GatewayURL("QmABC"))
}

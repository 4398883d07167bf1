// internal/services/media_service_test.go
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atommarket/atommarket-backend/internal/models"
	"github.com/atommarket/atommarket-backend/internal/storage"
)

// fakeGateway counts calls and hands out deterministic CIDs.
type fakeGateway struct {
	uploads     int
	jsonUploads int
	unpins      []string
	failAfter   int // fail the nth file upload (1-based), 0 = never
	failJSON    bool
	failUnpin   bool
}

func (g *fakeGateway) UploadFile(_ context.Context, name string, data io.Reader) (string, error) {
	g.uploads++
	if g.failAfter > 0 && g.uploads >= g.failAfter {
		return "", errors.New("gateway unavailable")
	}
	io.Copy(io.Discard, data)
	return fmt.Sprintf("Qm%s%d", strings.TrimSuffix(name, ".jpg"), g.uploads), nil
}

func (g *fakeGateway) UploadJSON(_ context.Context, doc interface{}) (string, error) {
	g.jsonUploads++
	if g.failJSON {
		return "", errors.New("gateway unavailable")
	}
	return "QmManifest", nil
}

func (g *fakeGateway) Unpin(_ context.Context, cid string) error {
	g.unpins = append(g.unpins, cid)
	if g.failUnpin {
		return errors.New("unpin refused")
	}
	return nil
}

func (g *fakeGateway) GatewayURL(cid string) string {
	return "https://gateway.example.com/ipfs/" + cid
}

func newMediaService(gateway *fakeGateway) *MediaService {
	return NewMediaService(gateway, storage.NewNoopPinAuditStore(), 5)
}

func blobs(n int) []ImageBlob {
	out := make([]ImageBlob, n)
	for i := range out {
		out[i] = ImageBlob{
			Name: fmt.Sprintf("img%d.jpg", i),
			Data: strings.NewReader("fake image bytes"),
		}
	}
	return out
}

func TestComposeFiveImagesPreservesOrder(t *testing.T) {
	gateway := &fakeGateway{}
	svc := newMediaService(gateway)

	url, err := svc.Compose(context.Background(), blobs(5))
	require.NoError(t, err)

	assert.Equal(t, "https://gateway.example.com/ipfs/QmManifest", url)
	assert.Equal(t, 5, gateway.uploads)
	assert.Equal(t, 1, gateway.jsonUploads)
}

func TestComposeManifestOrderMatchesInput(t *testing.T) {
	gateway := &capturingGateway{fakeGateway: &fakeGateway{}}
	svc := NewMediaService(gateway, storage.NewNoopPinAuditStore(), 5)

	_, err := svc.Compose(context.Background(), blobs(3))
	require.NoError(t, err)

	manifest, ok := gateway.captured.(models.Manifest)
	require.True(t, ok)
	require.Len(t, manifest.Images, 3)

	// The fake gateway numbers CIDs in upload order.
	assert.Equal(t, "Qmimg01", manifest.Images[0].CID)
	assert.Equal(t, "Qmimg12", manifest.Images[1].CID)
	assert.Equal(t, "Qmimg23", manifest.Images[2].CID)
	assert.Equal(t, "https://gateway.example.com/ipfs/Qmimg01", manifest.Images[0].URL)
}

type capturingGateway struct {
	*fakeGateway
	captured interface{}
}

func (g *capturingGateway) UploadJSON(ctx context.Context, doc interface{}) (string, error) {
	g.captured = doc
	return g.fakeGateway.UploadJSON(ctx, doc)
}

func TestComposeSixImagesFailsFast(t *testing.T) {
	gateway := &fakeGateway{}
	svc := newMediaService(gateway)

	_, err := svc.Compose(context.Background(), blobs(6))
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrTooManyImages)
	assert.Zero(t, gateway.uploads, "no network call may happen past the cap")
	assert.Zero(t, gateway.jsonUploads)
}

func TestComposeEmptyBatchRejected(t *testing.T) {
	gateway := &fakeGateway{}
	svc := newMediaService(gateway)

	_, err := svc.Compose(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoImages)
	assert.Zero(t, gateway.uploads)
}

func TestComposeFailsAsUnitLeavesEarlierPins(t *testing.T) {
	gateway := &fakeGateway{failAfter: 3}
	svc := newMediaService(gateway)

	url, err := svc.Compose(context.Background(), blobs(5))
	require.Error(t, err)

	assert.Empty(t, url, "no partial manifest is ever returned")
	assert.Zero(t, gateway.jsonUploads, "manifest upload must not be attempted")
	assert.Empty(t, gateway.unpins, "earlier image pins are not auto-released")
}

func TestComposeManifestUploadFailure(t *testing.T) {
	gateway := &fakeGateway{failJSON: true}
	svc := newMediaService(gateway)

	_, err := svc.Compose(context.Background(), blobs(2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest")
}

func TestResolveForRelease(t *testing.T) {
	svc := newMediaService(&fakeGateway{})

	cid, ok := svc.ResolveForRelease("https://gateway.pinata.cloud/ipfs/QmAbc123")
	require.True(t, ok)
	assert.Equal(t, "QmAbc123", cid)

	_, ok = svc.ResolveForRelease("")
	assert.False(t, ok)

	_, ok = svc.ResolveForRelease("   ")
	assert.False(t, ok)

	_, ok = svc.ResolveForRelease("not a url at all")
	assert.False(t, ok)

	_, ok = svc.ResolveForRelease("https://gateway.pinata.cloud")
	assert.False(t, ok)
}

func TestReleaseIsNoopOnEmptyAddress(t *testing.T) {
	gateway := &fakeGateway{}
	svc := newMediaService(gateway)

	svc.Release(context.Background(), "")
	assert.Empty(t, gateway.unpins)
}

func TestReleaseFailureIsSwallowed(t *testing.T) {
	gateway := &fakeGateway{failUnpin: true}
	svc := newMediaService(gateway)

	// Must not panic or propagate.
	svc.Release(context.Background(), "https://gateway.pinata.cloud/ipfs/QmAbc")
	assert.Equal(t, []string{"QmAbc"}, gateway.unpins)
}

// internal/services/media_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/atommarket/atommarket-backend/internal/metrics"
	"github.com/atommarket/atommarket-backend/internal/models"
	"github.com/atommarket/atommarket-backend/internal/storage"
)

var (
	ErrNoImages      = errors.New("no images to upload")
	ErrTooManyImages = errors.New("too many images")
)

// MediaGateway is the pinning worker surface the pipeline composes against.
type MediaGateway interface {
	UploadFile(ctx context.Context, name string, data io.Reader) (string, error)
	UploadJSON(ctx context.Context, doc interface{}) (string, error)
	Unpin(ctx context.Context, cid string) error
	GatewayURL(cid string) string
}

// ImageBlob is one image of a compose batch.
type ImageBlob struct {
	Name string
	Data io.Reader
}

// MediaService owns the media bundle of a listing: composed once at creation,
// released once when the listing terminates.
type MediaService struct {
	gateway   MediaGateway
	audit     storage.PinAuditStore
	maxImages int
}

func NewMediaService(gateway MediaGateway, audit storage.PinAuditStore, maxImages int) *MediaService {
	return &MediaService{
		gateway:   gateway,
		audit:     audit,
		maxImages: maxImages,
	}
}

// Compose uploads each image, builds an order-preserving manifest document,
// uploads the manifest, and returns its gateway URL. It fails as a unit: no
// partial manifest is ever returned. Image CIDs pinned before a failure stay
// pinned; the audit store keeps them enumerable for offline reclamation.
func (s *MediaService) Compose(ctx context.Context, images []ImageBlob) (string, error) {
	if len(images) == 0 {
		return "", ErrNoImages
	}
	if len(images) > s.maxImages {
		return "", fmt.Errorf("%w: got %d, maximum %d", ErrTooManyImages, len(images), s.maxImages)
	}

	batchID := uuid.New().String()
	manifest := models.Manifest{Images: make([]models.ManifestImage, 0, len(images))}

	for i, image := range images {
		cid, err := s.gateway.UploadFile(ctx, image.Name, image.Data)
		if err != nil {
			return "", fmt.Errorf("failed to upload image %d of %d: %w", i+1, len(images), err)
		}
		s.audit.RecordPin(cid, storage.PinKindImage, batchID, nil)
		manifest.Images = append(manifest.Images, models.ManifestImage{
			CID: cid,
			URL: s.gateway.GatewayURL(cid),
		})
	}

	manifestCID, err := s.gateway.UploadJSON(ctx, manifest)
	if err != nil {
		return "", fmt.Errorf("failed to upload manifest: %w", err)
	}

	imageCIDs := make([]string, len(manifest.Images))
	for i, img := range manifest.Images {
		imageCIDs[i] = img.CID
	}
	s.audit.RecordPin(manifestCID, storage.PinKindManifest, batchID, imageCIDs)

	return s.gateway.GatewayURL(manifestCID), nil
}

// ResolveForRelease extracts the releasable manifest CID from a listing's
// media address. An empty or malformed address resolves to not-ok, which
// turns the release into a no-op.
func (s *MediaService) ResolveForRelease(manifestURL string) (string, bool) {
	if strings.TrimSpace(manifestURL) == "" {
		return "", false
	}

	parsed, err := url.Parse(manifestURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	cid := segments[len(segments)-1]
	if cid == "" {
		return "", false
	}
	return cid, true
}

// Release unpins the manifest behind a media address. It is best effort and
// runs in its own failure domain: the triggering state transition has already
// committed on chain, so failures are logged and dropped, never retried.
func (s *MediaService) Release(ctx context.Context, manifestURL string) {
	cid, ok := s.ResolveForRelease(manifestURL)
	if !ok {
		return
	}

	err := s.gateway.Unpin(ctx, cid)
	s.audit.RecordUnpin(cid, err)
	if err != nil {
		metrics.UnpinFailures.Inc()
		logrus.WithError(err).WithField("cid", cid).Warn("Failed to unpin media bundle")
		return
	}
	logrus.WithField("cid", cid).Debug("Media bundle released")
}

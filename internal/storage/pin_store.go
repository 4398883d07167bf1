// internal/storage/pin_store.go
package storage

import (
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PinKind distinguishes image pins from manifest pins.
type PinKind string

const (
	PinKindImage    PinKind = "image"
	PinKindManifest PinKind = "manifest"
)

// PinRecord is written for every CID the media pipeline successfully pins.
// Compose batches that fail partway leave their earlier image pins in place;
// these rows are what makes those leaked CIDs reclaimable out of band.
type PinRecord struct {
	ID        uint           `json:"id" gorm:"primary_key"`
	CID       string         `json:"cid" gorm:"index;not null"`
	Kind      PinKind        `json:"kind" gorm:"not null"`
	BatchID   string         `json:"batch_id" gorm:"index"`
	ImageCIDs pq.StringArray `json:"image_cids,omitempty" gorm:"type:text[]"` // set on manifest rows
	CreatedAt time.Time      `json:"created_at"`
}

// UnpinRecord is written for every release attempt, successful or not.
type UnpinRecord struct {
	ID        uint      `json:"id" gorm:"primary_key"`
	CID       string    `json:"cid" gorm:"index;not null"`
	Succeeded bool      `json:"succeeded"`
	Error     string    `json:"error"`
	CreatedAt time.Time `json:"created_at"`
}

// PinAuditStore records pin/unpin activity for offline reconciliation. It is
// never read on the serving path and must never fail a caller: audit writes
// are best effort.
type PinAuditStore interface {
	RecordPin(cid string, kind PinKind, batchID string, imageCIDs []string)
	RecordUnpin(cid string, unpinErr error)
}

type gormPinAuditStore struct {
	db *gorm.DB
}

func NewPinAuditStore(db *gorm.DB) PinAuditStore {
	return &gormPinAuditStore{db: db}
}

func (s *gormPinAuditStore) RecordPin(cid string, kind PinKind, batchID string, imageCIDs []string) {
	record := &PinRecord{
		CID:       cid,
		Kind:      kind,
		BatchID:   batchID,
		ImageCIDs: imageCIDs,
	}
	if err := s.db.Create(record).Error; err != nil {
		logrus.WithError(err).WithField("cid", cid).Warn("Failed to record pin")
	}
}

func (s *gormPinAuditStore) RecordUnpin(cid string, unpinErr error) {
	record := &UnpinRecord{
		CID:       cid,
		Succeeded: unpinErr == nil,
	}
	if unpinErr != nil {
		record.Error = unpinErr.Error()
	}
	if err := s.db.Create(record).Error; err != nil {
		logrus.WithError(err).WithField("cid", cid).Warn("Failed to record unpin")
	}
}

// noopPinAuditStore serves deployments without an audit database.
type noopPinAuditStore struct{}

func NewNoopPinAuditStore() PinAuditStore {
	return noopPinAuditStore{}
}

func (noopPinAuditStore) RecordPin(string, PinKind, string, []string) {}
func (noopPinAuditStore) RecordUnpin(string, error)                  {}

package history

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/tableorder/pkg/db"
	"github.com/angelmondragon/tableorder/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLStorage keeps one order_history row per kiosk session. Rows older than
// the session TTL read as empty and are pruned on write.
type SQLStorage struct {
	db        *db.Client
	sessionID string
	ttl       time.Duration
	now       func() time.Time
}

func NewSQLStorage(client *db.Client, sessionID string, ttl time.Duration) *SQLStorage {
	return &SQLStorage{db: client, sessionID: sessionID, ttl: ttl, now: time.Now}
}

func (s *SQLStorage) Load(ctx context.Context) ([]Entry, error) {
	var record models.OrderHistoryRecord
	err := s.db.DB().WithContext(ctx).
		Where("session_id = ?", s.sessionID).
		Take(&record).Error
	if db.IsNotFound(err) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load history for session %s: %w", s.sessionID, err)
	}
	if s.expired(record.UpdatedAt) {
		return []Entry{}, nil
	}
	return decodeEntries(record.Entries)
}

func (s *SQLStorage) Save(ctx context.Context, entries []Entry) error {
	raw, err := encodeEntries(entries)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	record := models.OrderHistoryRecord{
		SessionID: s.sessionID,
		Entries:   raw,
		UpdatedAt: now,
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"entries", "updated_at"}),
		}).Create(&record).Error; err != nil {
			return fmt.Errorf("save history for session %s: %w", s.sessionID, err)
		}
		_, err := s.pruneBefore(tx, now)
		return err
	})
}

// PruneExpired deletes the rows of every session idle for longer than the
// TTL and returns how many were removed.
func (s *SQLStorage) PruneExpired(ctx context.Context) (int64, error) {
	return s.pruneBefore(s.db.DB().WithContext(ctx), s.now().UTC())
}

func (s *SQLStorage) pruneBefore(tx *gorm.DB, now time.Time) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	result := tx.Where("updated_at < ?", now.Add(-s.ttl)).Delete(&models.OrderHistoryRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("prune expired history: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *SQLStorage) expired(updatedAt time.Time) bool {
	return s.ttl > 0 && s.now().Sub(updatedAt) > s.ttl
}

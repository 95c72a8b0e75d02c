package models

import "time"

// OrderHistoryRecord holds one kiosk session's recent orders as a JSON array.
type OrderHistoryRecord struct {
	SessionID string    `gorm:"column:session_id;primaryKey"`
	Entries   string    `gorm:"column:entries;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (OrderHistoryRecord) TableName() string {
	return "order_history"
}

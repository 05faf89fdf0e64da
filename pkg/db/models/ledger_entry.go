package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/chokistore/backend/pkg/enums"
)

// LedgerEntry is an append-only loyalty point movement. Amount is the nominal
// signed change even when the balance update was clamped at zero.
type LedgerEntry struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID             `gorm:"column:user_id;type:uuid;not null"`
	OrderID     *uuid.UUID            `gorm:"column:order_id;type:uuid"`
	Amount      int64                 `gorm:"column:amount;not null"`
	Kind        enums.LedgerEntryKind `gorm:"column:kind;type:text;not null"`
	Description string                `gorm:"column:description;not null;default:''"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
}

func (LedgerEntry) TableName() string {
	return "loyalty_ledger_entries"
}

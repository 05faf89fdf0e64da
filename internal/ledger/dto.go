package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/chokistore/backend/pkg/db/models"
	"github.com/chokistore/backend/pkg/enums"
)

// EntryDTO is the API view of a ledger entry.
type EntryDTO struct {
	ID          uuid.UUID             `json:"id"`
	OrderID     *uuid.UUID            `json:"order_id,omitempty"`
	Amount      int64                 `json:"amount"`
	Kind        enums.LedgerEntryKind `json:"kind"`
	Description string                `json:"description"`
	CreatedAt   time.Time             `json:"created_at"`
}

// EntryListResult is one page of entries.
type EntryListResult struct {
	Entries    []EntryDTO `json:"entries"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// NewEntryDTO maps the model to its API shape.
func NewEntryDTO(entry *models.LedgerEntry) EntryDTO {
	return EntryDTO{
		ID:          entry.ID,
		OrderID:     entry.OrderID,
		Amount:      entry.Amount,
		Kind:        entry.Kind,
		Description: entry.Description,
		CreatedAt:   entry.CreatedAt,
	}
}

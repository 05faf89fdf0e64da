package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chokistore/backend/pkg/db/models"
	"github.com/chokistore/backend/pkg/pagination"
)

// Repository manages ledger entries and the denormalized users.points balance.
type Repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Insert appends an entry. Entries are never updated.
func (r *Repository) Insert(ctx context.Context, entry *models.LedgerEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// ApplyDelta moves the balance by amount in one statement, flooring at zero.
// It reports whether the user row exists.
func (r *Repository) ApplyDelta(ctx context.Context, userID uuid.UUID, amount int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("points", gorm.Expr("CASE WHEN points + ? < 0 THEN 0 ELSE points + ? END", amount, amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Debit subtracts cost only when the balance covers it. It reports whether a
// row changed.
func (r *Repository) Debit(ctx context.Context, userID uuid.UUID, cost int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND points >= ?", userID, cost).
		Update("points", gorm.Expr("points - ?", cost))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Balance returns the user's current points.
func (r *Repository) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Select("id", "points").
		First(&user, "id = ?", userID).Error; err != nil {
		return 0, err
	}
	return user.Points, nil
}

// ListByOrder returns the entries linked to an order, oldest first.
func (r *Repository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// List pages through a user's entries newest first.
func (r *Repository) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[models.LedgerEntry], error) {
	qb := r.db.WithContext(ctx).Model(&models.LedgerEntry{}).Where("user_id = ?", userID)
	return pagination.Newest(qb, params, func(e models.LedgerEntry) pagination.Cursor {
		return pagination.Cursor{CreatedAt: e.CreatedAt, ID: e.ID}
	})
}

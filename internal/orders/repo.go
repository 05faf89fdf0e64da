package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chokistore/backend/pkg/db/models"
	"github.com/chokistore/backend/pkg/enums"
	"github.com/chokistore/backend/pkg/pagination"
)

// Repository persists orders and the per-user order history.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus applies updates only while the order is still in from. It
// reports whether the row moved; false means another writer got there first.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from enums.OrderStatus, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AddHistory links the order into the user's history.
func (r *Repository) AddHistory(ctx context.Context, userID, orderID uuid.UUID, at time.Time) error {
	entry := models.OrderHistoryEntry{
		ID:        uuid.New(),
		UserID:    userID,
		OrderID:   orderID,
		CreatedAt: at,
	}
	return r.db.WithContext(ctx).Create(&entry).Error
}

// PruneHistory keeps the newest keep entries for the user and drops the rest.
func (r *Repository) PruneHistory(ctx context.Context, userID uuid.UUID, keep int) (int64, error) {
	res := r.db.WithContext(ctx).Exec(
		`DELETE FROM order_history
WHERE user_id = ?
  AND id NOT IN (
    SELECT id FROM order_history
    WHERE user_id = ?
    ORDER BY created_at DESC, id DESC
    LIMIT ?
  )`,
		userID, userID, keep,
	)
	return res.RowsAffected, res.Error
}

// RemoveHistory unlinks one order from the user's history.
func (r *Repository) RemoveHistory(ctx context.Context, userID, orderID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND order_id = ?", userID, orderID).
		Delete(&models.OrderHistoryEntry{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListHistory returns the orders in the user's history, newest entry first.
func (r *Repository) ListHistory(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("orders.*").
		Joins("JOIN order_history ON order_history.order_id = orders.id").
		Where("order_history.user_id = ?", userID).
		Order("order_history.created_at DESC").
		Order("order_history.id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

type adminListQuery struct {
	Status     *enums.OrderStatus
	Pagination pagination.Params
}

// List pages through every order newest first for the back office.
func (r *Repository) List(ctx context.Context, query adminListQuery) (pagination.Page[models.Order], error) {
	qb := r.db.WithContext(ctx).Model(&models.Order{})
	if query.Status != nil {
		qb = qb.Where("status = ?", *query.Status)
	}
	return pagination.Newest(qb, query.Pagination, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
}

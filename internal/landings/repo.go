package landings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chokistore/backend/pkg/db/models"
)

// Repository persists invitation landings.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, landing *models.Landing) error {
	if landing.ID == uuid.Nil {
		landing.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(landing).Error
}

func (r *Repository) Save(ctx context.Context, landing *models.Landing) error {
	return r.db.WithContext(ctx).Save(landing).Error
}

// Delete reports whether a row existed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Landing{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Landing, error) {
	var landing models.Landing
	if err := r.db.WithContext(ctx).First(&landing, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &landing, nil
}

func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Landing, error) {
	var landing models.Landing
	if err := r.db.WithContext(ctx).First(&landing, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &landing, nil
}

// List returns every landing in slug order.
func (r *Repository) List(ctx context.Context) ([]models.Landing, error) {
	var rows []models.Landing
	if err := r.db.WithContext(ctx).Order("slug ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

package routesplan

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davidgarza-dev/fieldmark-backend/pkg/db/models"
)

// Repository persists route assignments. Replace callers must run
// DeleteByPromoter and CreateAll inside one transaction so no reader
// observes an empty route mid-swap.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	DeleteByPromoter(ctx context.Context, promoterID uuid.UUID) error
	CreateAll(ctx context.Context, assignments []models.RouteAssignment) error
	ListByPromoter(ctx context.Context, promoterID uuid.UUID) ([]models.RouteAssignment, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	CountStores(ctx context.Context, ids []uuid.UUID) (int64, error)
	StoreNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) DeleteByPromoter(ctx context.Context, promoterID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("promoter_id = ?", promoterID).
		Delete(&models.RouteAssignment{}).Error
}

func (r *repository) CreateAll(ctx context.Context, assignments []models.RouteAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&assignments).Error
}

func (r *repository) ListByPromoter(ctx context.Context, promoterID uuid.UUID) ([]models.RouteAssignment, error) {
	var rows []models.RouteAssignment
	err := r.db.WithContext(ctx).
		Where("promoter_id = ?", promoterID).
		Order("position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) CountStores(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Store{}).
		Where("id IN ? AND is_active", ids).
		Count(&count).Error
	return count, err
}

func (r *repository) StoreNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var stores []models.Store
	if err := r.db.WithContext(ctx).Select("id, name").Where("id IN ?", ids).Find(&stores).Error; err != nil {
		return nil, err
	}
	for _, store := range stores {
		names[store.ID] = store.Name
	}
	return names, nil
}

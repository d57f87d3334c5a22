package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davidgarza-dev/fieldmark-backend/pkg/db/models"
)

// Repository is the read side of the store/industry catalog. Catalog
// mutation lives in the admin system; the visit engine only looks things up.
type Repository interface {
	FindStoreByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	ListActiveStores(ctx context.Context) ([]models.Store, error)
	FindIndustryByID(ctx context.Context, id uuid.UUID) (*models.Industry, error)
	ListActiveIndustries(ctx context.Context) ([]models.Industry, error)
	ListStoreIndustries(ctx context.Context, storeID uuid.UUID) ([]models.StoreIndustry, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindStoreByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).First(&store, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *repository) ListActiveStores(ctx context.Context) ([]models.Store, error) {
	var stores []models.Store
	err := r.db.WithContext(ctx).
		Where("is_active").
		Order("name ASC").
		Find(&stores).Error
	if err != nil {
		return nil, err
	}
	return stores, nil
}

func (r *repository) FindIndustryByID(ctx context.Context, id uuid.UUID) (*models.Industry, error) {
	var industry models.Industry
	if err := r.db.WithContext(ctx).First(&industry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &industry, nil
}

func (r *repository) ListActiveIndustries(ctx context.Context) ([]models.Industry, error) {
	var industries []models.Industry
	err := r.db.WithContext(ctx).
		Where("is_active").
		Order("name ASC").
		Find(&industries).Error
	if err != nil {
		return nil, err
	}
	return industries, nil
}

func (r *repository) ListStoreIndustries(ctx context.Context, storeID uuid.UUID) ([]models.StoreIndustry, error) {
	var links []models.StoreIndustry
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND is_active", storeID).
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

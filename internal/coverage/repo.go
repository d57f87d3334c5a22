package coverage

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davidgarza-dev/fieldmark-backend/pkg/db/models"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/enums"
)

// Repository serves the aggregator's reads. Everything here is a pure read;
// coverage re-derives from the required-industry links and attribution rows
// on every call.
type Repository interface {
	FindStoreByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	ListStoresWithRequirements(ctx context.Context) ([]models.Store, error)
	ListRequiredIndustries(ctx context.Context, storeID uuid.UUID) ([]models.Industry, error)
	ListCoveredIndustryIDs(ctx context.Context, storeID uuid.UUID, window Window) ([]uuid.UUID, error)
	FindVisitByID(ctx context.Context, id uuid.UUID) (*models.Visit, error)
	ListVisitIndustryIDs(ctx context.Context, visitID uuid.UUID) ([]uuid.UUID, error)
	LatestVisitForStore(ctx context.Context, storeID uuid.UUID, window Window) (*models.Visit, error)
	ListVisitsInWindow(ctx context.Context, window Window) ([]models.Visit, error)
	CountDisplayPhotos(ctx context.Context, visitIDs []uuid.UUID) (map[uuid.UUID]int, error)
	FindActiveQuota(ctx context.Context, promoterID uuid.UUID) (*models.PhotoQuota, error)
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

// ListStoresWithRequirements returns active stores holding at least one
// active required-industry link to an active industry.
func (r *repository) ListStoresWithRequirements(ctx context.Context) ([]models.Store, error) {
	var stores []models.Store
	err := r.db.WithContext(ctx).
		Distinct("stores.*").
		Joins("JOIN store_industries ON store_industries.store_id = stores.id AND store_industries.is_active").
		Joins("JOIN industries ON industries.id = store_industries.industry_id AND industries.is_active").
		Where("stores.is_active").
		Order("stores.name ASC").
		Find(&stores).Error
	if err != nil {
		return nil, err
	}
	return stores, nil
}

func (r *repository) ListRequiredIndustries(ctx context.Context, storeID uuid.UUID) ([]models.Industry, error) {
	var industries []models.Industry
	err := r.db.WithContext(ctx).
		Joins("JOIN store_industries ON store_industries.industry_id = industries.id").
		Where("store_industries.store_id = ? AND store_industries.is_active AND industries.is_active", storeID).
		Order("industries.name ASC").
		Find(&industries).Error
	if err != nil {
		return nil, err
	}
	return industries, nil
}

func (r *repository) ListCoveredIndustryIDs(ctx context.Context, storeID uuid.UUID, window Window) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.PhotoIndustry{}).
		Distinct("industry_id").
		Where("store_id = ? AND created_at >= ? AND created_at < ?", storeID, window.Start, window.End).
		Pluck("industry_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) FindVisitByID(ctx context.Context, id uuid.UUID) (*models.Visit, error) {
	var visit models.Visit
	if err := r.db.WithContext(ctx).First(&visit, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &visit, nil
}

func (r *repository) ListVisitIndustryIDs(ctx context.Context, visitID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.PhotoIndustry{}).
		Distinct("industry_id").
		Where("visit_id = ?", visitID).
		Pluck("industry_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) LatestVisitForStore(ctx context.Context, storeID uuid.UUID, window Window) (*models.Visit, error) {
	var visit models.Visit
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND check_in_at >= ? AND check_in_at < ?", storeID, window.Start, window.End).
		Order("check_in_at DESC").
		First(&visit).Error
	if err != nil {
		return nil, err
	}
	return &visit, nil
}

func (r *repository) ListVisitsInWindow(ctx context.Context, window Window) ([]models.Visit, error) {
	var visits []models.Visit
	err := r.db.WithContext(ctx).
		Where("check_in_at >= ? AND check_in_at < ?", window.Start, window.End).
		Order("check_in_at ASC").
		Find(&visits).Error
	if err != nil {
		return nil, err
	}
	return visits, nil
}

// CountDisplayPhotos counts OTHER-type photos per visit. Facade photos are
// mandatory bookends and never count toward the display quota.
func (r *repository) CountDisplayPhotos(ctx context.Context, visitIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(visitIDs))
	if len(visitIDs) == 0 {
		return counts, nil
	}
	type row struct {
		VisitID uuid.UUID
		Total   int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Photo{}).
		Select("visit_id, COUNT(*) AS total").
		Where("visit_id IN ? AND type = ?", visitIDs, enums.PhotoTypeOther).
		Group("visit_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		counts[r.VisitID] = r.Total
	}
	return counts, nil
}

func (r *repository) FindActiveQuota(ctx context.Context, promoterID uuid.UUID) (*models.PhotoQuota, error) {
	var quota models.PhotoQuota
	err := r.db.WithContext(ctx).
		Where("promoter_id = ? AND is_active", promoterID).
		Order("updated_at DESC").
		First(&quota).Error
	if err != nil {
		return nil, err
	}
	return &quota, nil
}

package hours

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davidgarza-dev/fieldmark-backend/pkg/db/models"
)

// pairKey identifies one (promoter, store) pair in the worked-hours sums.
type pairKey struct {
	PromoterID uuid.UUID
	StoreID    uuid.UUID
}

// Repository serves the reporter's reads.
type Repository interface {
	ListTargetedAssignments(ctx context.Context, promoterID uuid.UUID) ([]models.RouteAssignment, error)
	SumWorkedHours(ctx context.Context, promoterID uuid.UUID, q Query) (map[pairKey]float64, error)
	StoreNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// ListTargetedAssignments returns route assignments carrying an
// expected-hours target, fleet-wide when promoterID is nil.
func (r *repository) ListTargetedAssignments(ctx context.Context, promoterID uuid.UUID) ([]models.RouteAssignment, error) {
	query := r.db.WithContext(ctx).Where("expected_hours IS NOT NULL")
	if promoterID != uuid.Nil {
		query = query.Where("promoter_id = ?", promoterID)
	}
	var rows []models.RouteAssignment
	if err := query.Order("promoter_id, position ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SumWorkedHours sums hoursWorked over closed visits per (promoter, store)
// pair inside the window. Open visits contribute nothing.
func (r *repository) SumWorkedHours(ctx context.Context, promoterID uuid.UUID, q Query) (map[pairKey]float64, error) {
	type row struct {
		PromoterID uuid.UUID
		StoreID    uuid.UUID
		Hours      float64
	}
	query := r.db.WithContext(ctx).
		Model(&models.Visit{}).
		Select("promoter_id, store_id, SUM(EXTRACT(EPOCH FROM (check_out_at - check_in_at)) / 3600) AS hours").
		Where("check_out_at IS NOT NULL AND check_in_at >= ? AND check_in_at < ?", q.Start, q.End).
		Group("promoter_id, store_id")
	if promoterID != uuid.Nil {
		query = query.Where("promoter_id = ?", promoterID)
	}
	var rows []row
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	sums := make(map[pairKey]float64, len(rows))
	for _, r := range rows {
		sums[pairKey{PromoterID: r.PromoterID, StoreID: r.StoreID}] = r.Hours
	}
	return sums, nil
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

package visits

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/davidgarza-dev/fieldmark-backend/pkg/db"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/db/models"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/pagination"
)

const openVisitConstraint = "ux_visits_open_promoter"

// Repository abstracts visit persistence so the service can run against a
// transaction-scoped copy.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, visit *models.Visit) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Visit, error)
	FindOpenByPromoter(ctx context.Context, promoterID uuid.UUID) (*models.Visit, error)
	Close(ctx context.Context, visit *models.Visit) error
	UpsertFacadePhoto(ctx context.Context, photo *models.Photo) error
	CreatePhoto(ctx context.Context, photo *models.Photo) error
	ListPhotosByVisit(ctx context.Context, visitID uuid.UUID) ([]models.Photo, error)
	List(ctx context.Context, filter ListFilter) ([]models.Visit, error)
	ListOpenVisitsOlderThan(ctx context.Context, cutoff time.Time) ([]models.Visit, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a visit repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

// Create inserts the visit. The partial unique index on open visits makes
// the one-open-visit rule hold under concurrent check-ins; callers detect
// the violation with IsOpenVisitConflict.
func (r *repository) Create(ctx context.Context, visit *models.Visit) error {
	return r.db.WithContext(ctx).Create(visit).Error
}

// IsOpenVisitConflict reports whether err is the open-visit unique violation.
func IsOpenVisitConflict(err error) bool {
	return dbpkg.IsUniqueViolation(err, openVisitConstraint)
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Visit, error) {
	var visit models.Visit
	if err := r.db.WithContext(ctx).First(&visit, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &visit, nil
}

func (r *repository) FindOpenByPromoter(ctx context.Context, promoterID uuid.UUID) (*models.Visit, error) {
	var visit models.Visit
	err := r.db.WithContext(ctx).
		Where("promoter_id = ? AND check_out_at IS NULL", promoterID).
		First(&visit).Error
	if err != nil {
		return nil, err
	}
	return &visit, nil
}

// Close persists the check-out fields. The WHERE guard on check_out_at keeps
// the update from racing another close of the same visit.
func (r *repository) Close(ctx context.Context, visit *models.Visit) error {
	result := r.db.WithContext(ctx).
		Model(&models.Visit{}).
		Where("id = ? AND check_out_at IS NULL", visit.ID).
		Updates(map[string]any{
			"check_out_at":       visit.CheckOutAt,
			"check_out_location": visit.CheckOutLocation,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpsertFacadePhoto replaces the facade photo of the same type if one exists.
// The conflict target mirrors the ux_photos_visit_facade partial index.
func (r *repository) UpsertFacadePhoto(ctx context.Context, photo *models.Photo) error {
	row := r.db.WithContext(ctx).Raw(`
		INSERT INTO photos (visit_id, url, type, location)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (visit_id, type) WHERE type <> 'other'
		DO UPDATE SET url = EXCLUDED.url, location = EXCLUDED.location, updated_at = now()
		RETURNING id, created_at, updated_at`,
		photo.VisitID, photo.URL, photo.Type, locationValue(photo),
	).Row()
	return row.Scan(&photo.ID, &photo.CreatedAt, &photo.UpdatedAt)
}

func (r *repository) CreatePhoto(ctx context.Context, photo *models.Photo) error {
	return r.db.WithContext(ctx).Create(photo).Error
}

func (r *repository) ListPhotosByVisit(ctx context.Context, visitID uuid.UUID) ([]models.Photo, error) {
	var rows []models.Photo
	err := r.db.WithContext(ctx).
		Where("visit_id = ?", visitID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// List returns one page of visits, newest first. The buffered limit lets the
// service detect whether a next page exists.
func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Visit, error) {
	q := r.db.WithContext(ctx).Model(&models.Visit{})
	if filter.PromoterID != uuid.Nil {
		q = q.Where("promoter_id = ?", filter.PromoterID)
	}
	if filter.StoreID != uuid.Nil {
		q = q.Where("store_id = ?", filter.StoreID)
	}
	if !filter.From.IsZero() {
		q = q.Where("check_in_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("check_in_at < ?", filter.To)
	}

	cursor, err := pagination.ParseCursor(strings.TrimSpace(filter.Cursor))
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Visit
	err = q.Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(filter.Limit)).
		Find(&rows).Error
	return rows, err
}

// ListOpenVisitsOlderThan serves the watchdog: visits still open whose
// check-in precedes the cutoff, oldest first.
func (r *repository) ListOpenVisitsOlderThan(ctx context.Context, cutoff time.Time) ([]models.Visit, error) {
	var rows []models.Visit
	err := r.db.WithContext(ctx).
		Where("check_out_at IS NULL AND check_in_at < ?", cutoff).
		Order("check_in_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func locationValue(photo *models.Photo) any {
	if photo.Location == nil {
		return nil
	}
	return *photo.Location
}

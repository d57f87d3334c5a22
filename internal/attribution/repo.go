package attribution

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/davidgarza-dev/fieldmark-backend/pkg/db"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/db/models"
)

const attributionPairConstraint = "ux_photo_industries_pair"

// Repository covers the reads the attribution decision needs plus the final
// insert. All lookups run against the ambient connection; only the insert
// joins the caller's transaction via WithTx.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindPhotoByID(ctx context.Context, id uuid.UUID) (*models.Photo, error)
	FindVisitByID(ctx context.Context, id uuid.UUID) (*models.Visit, error)
	FindIndustryByID(ctx context.Context, id uuid.UUID) (*models.Industry, error)
	ListAssignments(ctx context.Context, promoterID, industryID uuid.UUID) ([]models.IndustryAssignment, error)
	CreatePhotoIndustry(ctx context.Context, link *models.PhotoIndustry) error
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

func (r *repository) FindPhotoByID(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	var photo models.Photo
	if err := r.db.WithContext(ctx).First(&photo, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &photo, nil
}

func (r *repository) FindVisitByID(ctx context.Context, id uuid.UUID) (*models.Visit, error) {
	var visit models.Visit
	if err := r.db.WithContext(ctx).First(&visit, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &visit, nil
}

func (r *repository) FindIndustryByID(ctx context.Context, id uuid.UUID) (*models.Industry, error) {
	var industry models.Industry
	if err := r.db.WithContext(ctx).First(&industry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &industry, nil
}

// ListAssignments returns the promoter's active assignments for the industry,
// store-scoped and wildcard rows alike. The caller decides which one applies.
func (r *repository) ListAssignments(ctx context.Context, promoterID, industryID uuid.UUID) ([]models.IndustryAssignment, error) {
	var rows []models.IndustryAssignment
	err := r.db.WithContext(ctx).
		Where("promoter_id = ? AND industry_id = ? AND is_active", promoterID, industryID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CreatePhotoIndustry(ctx context.Context, link *models.PhotoIndustry) error {
	return r.db.WithContext(ctx).Create(link).Error
}

// IsDuplicateAttribution reports whether err is the (photo_id, industry_id)
// unique index rejecting a repeat attribution.
func IsDuplicateAttribution(err error) bool {
	return dbpkg.IsUniqueViolation(err, attributionPairConstraint)
}

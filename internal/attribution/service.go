package attribution

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davidgarza-dev/fieldmark-backend/pkg/db/models"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/enums"
	pkgerrors "github.com/davidgarza-dev/fieldmark-backend/pkg/errors"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/outbox"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service decides whether a promoter may attribute a photo to an industry and
// records the link when they may.
type Service interface {
	Attribute(ctx context.Context, promoterID, photoID uuid.UUID, req AttributeRequest) (*AttributionDTO, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

type ServiceParams struct {
	Repo     Repository
	TxRunner txRunner
	Outbox   outboxPublisher
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "attribution repo is required")
	}
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "outbox publisher is required")
	}
	return &service{repo: params.Repo, tx: params.TxRunner, outbox: params.Outbox}, nil
}

// Attribute walks the authorization chain in order: the photo must exist, its
// visit must belong to the promoter, the industry must be live, and the
// promoter needs an assignment valid at the visit's store. An inactive
// industry reads as absent so clients cannot enumerate retired entries.
func (s *service) Attribute(ctx context.Context, promoterID, photoID uuid.UUID, req AttributeRequest) (*AttributionDTO, error) {
	if promoterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "promoter identity missing")
	}
	if photoID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "photo id is required")
	}
	if req.IndustryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "industry id is required")
	}

	photo, err := s.repo.FindPhotoByID(ctx, photoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "photo not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load photo")
	}

	// Facade photos document the visit itself; only display (OTHER) photos
	// carry industry attributions and count toward coverage.
	if photo.Type != enums.PhotoTypeOther {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only display photos can be attributed to an industry")
	}

	visit, err := s.repo.FindVisitByID(ctx, photo.VisitID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load owning visit")
	}
	if visit.PromoterID != promoterID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "photo does not belong to promoter")
	}

	industry, err := s.repo.FindIndustryByID(ctx, req.IndustryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "industry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load industry")
	}
	if !industry.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "industry not found")
	}

	if err := s.authorize(ctx, promoterID, industry.ID, visit.StoreID); err != nil {
		return nil, err
	}

	link := &models.PhotoIndustry{
		PhotoID:    photo.ID,
		IndustryID: industry.ID,
		PromoterID: visit.PromoterID,
		StoreID:    visit.StoreID,
		VisitID:    visit.ID,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreatePhotoIndustry(ctx, link); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventPhotoAttributed,
			AggregateType: enums.OutboxAggregatePhoto,
			AggregateID:   photo.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: promoterID, Role: string(enums.UserRolePromoter)},
			Data: payloads.PhotoAttributedEvent{
				PhotoID:    photo.ID,
				IndustryID: industry.ID,
				VisitID:    visit.ID,
				PromoterID: visit.PromoterID,
				StoreID:    visit.StoreID,
			},
		})
	})
	if err != nil {
		if IsDuplicateAttribution(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "photo already attributed to industry").
				WithDetails(map[string]any{
					"photo_id":    photo.ID.String(),
					"industry_id": industry.ID.String(),
				})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create attribution")
	}

	dto := attributionToDTO(*link)
	return &dto, nil
}

// authorize requires an active assignment whose scope covers the store. A
// wildcard assignment (nil store) covers every store.
func (s *service) authorize(ctx context.Context, promoterID, industryID, storeID uuid.UUID) error {
	assignments, err := s.repo.ListAssignments(ctx, promoterID, industryID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignments")
	}
	for _, assignment := range assignments {
		if assignment.Authorizes(storeID) {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "promoter is not assigned to this industry at this store")
}

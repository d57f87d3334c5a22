package visits

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davidgarza-dev/fieldmark-backend/pkg/db/models"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/enums"
	pkgerrors "github.com/davidgarza-dev/fieldmark-backend/pkg/errors"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/outbox"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/outbox/payloads"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type storeFinder interface {
	FindStoreByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

// Service exposes the visit lifecycle: check-in opens a visit, photos attach
// to the open visit, check-out closes it exactly once.
type Service interface {
	CheckIn(ctx context.Context, promoterID uuid.UUID, req CheckInRequest) (*VisitDTO, error)
	CheckOut(ctx context.Context, promoterID, visitID uuid.UUID, req CheckOutRequest) (*VisitDTO, error)
	AttachPhotos(ctx context.Context, promoterID, visitID uuid.UUID, req AttachPhotosRequest) ([]PhotoDTO, error)
	List(ctx context.Context, filter ListFilter) (*VisitPageDTO, error)
	Get(ctx context.Context, visitID uuid.UUID) (*VisitDTO, error)
}

type service struct {
	repo   Repository
	stores storeFinder
	tx     txRunner
	outbox outboxPublisher
	now    func() time.Time
}

// ServiceParams groups dependencies for the visit service.
type ServiceParams struct {
	Repo      Repository
	StoreRepo storeFinder
	TxRunner  txRunner
	Outbox    outboxPublisher
	Clock     func() time.Time
}

// NewService builds a visit service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "visit repo is required")
	}
	if params.StoreRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store repo is required")
	}
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "outbox publisher is required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		repo:   params.Repo,
		stores: params.StoreRepo,
		tx:     params.TxRunner,
		outbox: params.Outbox,
		now:    clock,
	}, nil
}

// CheckIn opens a visit. The open-visit unique index decides races; losing
// inserts surface as a conflict carrying the already open visit's id.
func (s *service) CheckIn(ctx context.Context, promoterID uuid.UUID, req CheckInRequest) (*VisitDTO, error) {
	if promoterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "promoter identity missing")
	}
	if req.StoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}

	store, err := s.stores.FindStoreByID(ctx, req.StoreID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	if !store.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store is not active")
	}

	visit := &models.Visit{
		PromoterID:      promoterID,
		StoreID:         req.StoreID,
		CheckInAt:       s.now().UTC(),
		CheckInLocation: req.Location.toPoint(),
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, visit); err != nil {
			return err
		}
		point := req.Location.toPoint()
		facade := &models.Photo{
			VisitID:  visit.ID,
			URL:      req.FacadePhotoURL,
			Type:     enums.PhotoTypeFacadeCheckIn,
			Location: &point,
		}
		if err := repo.UpsertFacadePhoto(ctx, facade); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventVisitCheckedIn,
			AggregateType: enums.OutboxAggregateVisit,
			AggregateID:   visit.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: promoterID, Role: string(enums.UserRolePromoter)},
			Data: payloads.VisitCheckedInEvent{
				VisitID:    visit.ID,
				PromoterID: promoterID,
				StoreID:    visit.StoreID,
				CheckInAt:  visit.CheckInAt,
			},
		})
	})
	if err != nil {
		if IsOpenVisitConflict(err) {
			return nil, s.openVisitConflict(ctx, promoterID, err)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create visit")
	}

	dto := visitToDTO(*visit)
	return &dto, nil
}

// openVisitConflict re-reads the winning open visit so the conflict payload
// can point the client at it.
func (s *service) openVisitConflict(ctx context.Context, promoterID uuid.UUID, cause error) error {
	existing, findErr := s.repo.FindOpenByPromoter(ctx, promoterID)
	conflict := pkgerrors.Wrap(pkgerrors.CodeConflict, cause, "promoter already has an open visit")
	if findErr == nil && existing != nil {
		return conflict.WithDetails(map[string]any{"existing_visit_id": existing.ID.String()})
	}
	return conflict
}

// CheckOut closes the visit exactly once. A second check-out of the same
// visit is a state conflict, not a success, so clients can tell replay from
// first close.
func (s *service) CheckOut(ctx context.Context, promoterID, visitID uuid.UUID, req CheckOutRequest) (*VisitDTO, error) {
	if promoterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "promoter identity missing")
	}
	if visitID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "visit id is required")
	}

	visit, err := s.loadOwnedVisit(ctx, promoterID, visitID)
	if err != nil {
		return nil, err
	}
	if !visit.IsOpen() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "visit already closed")
	}

	checkOutAt := s.now().UTC()
	if checkOutAt.Before(visit.CheckInAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "check-out precedes check-in")
	}
	location := req.Location.toPoint()
	visit.CheckOutAt = &checkOutAt
	visit.CheckOutLocation = &location

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Close(ctx, visit); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "visit already closed")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close visit")
		}

		facade := &models.Photo{
			VisitID:  visit.ID,
			URL:      req.FacadePhotoURL,
			Type:     enums.PhotoTypeFacadeCheckOut,
			Location: &location,
		}
		if err := repo.UpsertFacadePhoto(ctx, facade); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store facade photo")
		}

		hours, _ := visit.HoursWorked()
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventVisitCheckedOut,
			AggregateType: enums.OutboxAggregateVisit,
			AggregateID:   visit.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: promoterID, Role: string(enums.UserRolePromoter)},
			Data: payloads.VisitCheckedOutEvent{
				VisitID:     visit.ID,
				PromoterID:  visit.PromoterID,
				StoreID:     visit.StoreID,
				CheckInAt:   visit.CheckInAt,
				CheckOutAt:  checkOutAt,
				HoursWorked: hours,
			},
		})
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close visit")
	}

	dto := visitToDTO(*visit)
	return &dto, nil
}

// AttachPhotos stores a batch of photos on a visit the promoter owns. Facade
// photos replace the prior photo of the same type; display photos always
// insert. Closure is not enforced here: late uploads from the offline queue
// land on the owning visit regardless.
func (s *service) AttachPhotos(ctx context.Context, promoterID, visitID uuid.UUID, req AttachPhotosRequest) ([]PhotoDTO, error) {
	if promoterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "promoter identity missing")
	}
	if visitID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "visit id is required")
	}
	if len(req.Photos) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one photo is required")
	}

	types := make([]enums.PhotoType, 0, len(req.Photos))
	for _, input := range req.Photos {
		photoType, err := enums.ParsePhotoType(input.Type)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid photo type").
				WithDetails(map[string]any{"type": input.Type})
		}
		types = append(types, photoType)
	}

	visit, err := s.loadOwnedVisit(ctx, promoterID, visitID)
	if err != nil {
		return nil, err
	}

	dtos := make([]PhotoDTO, 0, len(req.Photos))
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for i, input := range req.Photos {
			photo := &models.Photo{
				VisitID: visit.ID,
				URL:     input.URL,
				Type:    types[i],
			}
			if input.Location != nil {
				point := input.Location.toPoint()
				photo.Location = &point
			}

			var storeErr error
			if types[i].IsFacade() {
				storeErr = repo.UpsertFacadePhoto(ctx, photo)
			} else {
				storeErr = repo.CreatePhoto(ctx, photo)
			}
			if storeErr != nil {
				return storeErr
			}
			dtos = append(dtos, photoToDTO(*photo))
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store photos")
	}
	return dtos, nil
}

// List returns one page of visits, newest first.
func (s *service) List(ctx context.Context, filter ListFilter) (*VisitPageDTO, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list visits")
	}

	limit := pagination.NormalizeLimit(filter.Limit)
	page := &VisitPageDTO{Visits: make([]VisitDTO, 0, len(rows))}
	for i, row := range rows {
		if i == limit {
			last := rows[limit-1]
			page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
				CreatedAt: last.CreatedAt,
				ID:        last.ID,
			})
			break
		}
		page.Visits = append(page.Visits, visitToDTO(row))
	}
	return page, nil
}

// Get returns a single visit without ownership checks; supervisor read
// models use it.
func (s *service) Get(ctx context.Context, visitID uuid.UUID) (*VisitDTO, error) {
	if visitID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "visit id is required")
	}
	visit, err := s.repo.FindByID(ctx, visitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "visit not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load visit")
	}
	dto := visitToDTO(*visit)
	return &dto, nil
}

func (s *service) loadOwnedVisit(ctx context.Context, promoterID, visitID uuid.UUID) (*models.Visit, error) {
	visit, err := s.repo.FindByID(ctx, visitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "visit not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load visit")
	}
	// A foreign visit reads as absent so callers cannot confirm its existence.
	if visit.PromoterID != promoterID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "visit not found")
	}
	return visit, nil
}

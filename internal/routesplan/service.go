package routesplan

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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

// Service owns route replacement. Routes are swapped wholesale, never
// patched, so a promoter's route is always a total order with unique stops.
type Service interface {
	Replace(ctx context.Context, actorID, promoterID uuid.UUID, req ReplaceRequest) (*RouteDTO, error)
	Get(ctx context.Context, promoterID uuid.UUID) (*RouteDTO, error)
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
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "route repo is required")
	}
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "outbox publisher is required")
	}
	return &service{repo: params.Repo, tx: params.TxRunner, outbox: params.Outbox}, nil
}

// Replace deletes the promoter's prior assignments and recreates the new
// ordered set in one transaction. An empty request clears the route.
func (s *service) Replace(ctx context.Context, actorID, promoterID uuid.UUID, req ReplaceRequest) (*RouteDTO, error) {
	if promoterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promoter id is required")
	}

	storeIDs := make([]uuid.UUID, 0, len(req.Stops))
	seen := make(map[uuid.UUID]struct{}, len(req.Stops))
	for _, stop := range req.Stops {
		if stop.StoreID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required on every stop")
		}
		if _, dup := seen[stop.StoreID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "route contains the same store twice").
				WithDetails(map[string]any{"store_id": stop.StoreID.String()})
		}
		seen[stop.StoreID] = struct{}{}
		storeIDs = append(storeIDs, stop.StoreID)
	}

	promoter, err := s.repo.FindUserByID(ctx, promoterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "promoter not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load promoter")
	}
	if promoter.Role != enums.UserRolePromoter || !promoter.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "promoter not found")
	}

	count, err := s.repo.CountStores(ctx, storeIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify stores")
	}
	if count != int64(len(storeIDs)) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "one or more stores not found")
	}

	assignments := make([]models.RouteAssignment, 0, len(req.Stops))
	for position, stop := range req.Stops {
		assignment := models.RouteAssignment{
			PromoterID: promoterID,
			StoreID:    stop.StoreID,
			Position:   position,
		}
		if stop.ExpectedHours != nil {
			target := decimal.NewFromFloat(*stop.ExpectedHours)
			assignment.ExpectedHours = &target
		}
		assignments = append(assignments, assignment)
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteByPromoter(ctx, promoterID); err != nil {
			return err
		}
		if err := repo.CreateAll(ctx, assignments); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventRouteReplaced,
			AggregateType: enums.OutboxAggregatePromoter,
			AggregateID:   promoterID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: actorID, Role: string(enums.UserRoleSupervisor)},
			Data: payloads.RouteReplacedEvent{
				PromoterID: promoterID,
				StoreIDs:   storeIDs,
				StopCount:  len(storeIDs),
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace route")
	}

	return s.routeDTO(ctx, promoterID, assignments)
}

// Get returns the promoter's route in stop order.
func (s *service) Get(ctx context.Context, promoterID uuid.UUID) (*RouteDTO, error) {
	if promoterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promoter id is required")
	}
	assignments, err := s.repo.ListByPromoter(ctx, promoterID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list route")
	}
	return s.routeDTO(ctx, promoterID, assignments)
}

func (s *service) routeDTO(ctx context.Context, promoterID uuid.UUID, assignments []models.RouteAssignment) (*RouteDTO, error) {
	storeIDs := make([]uuid.UUID, 0, len(assignments))
	for _, assignment := range assignments {
		storeIDs = append(storeIDs, assignment.StoreID)
	}
	names, err := s.repo.StoreNames(ctx, storeIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store names")
	}

	route := &RouteDTO{PromoterID: promoterID, Stops: make([]StopDTO, 0, len(assignments))}
	for _, assignment := range assignments {
		route.Stops = append(route.Stops, stopToDTO(assignment, names[assignment.StoreID]))
	}
	return route, nil
}

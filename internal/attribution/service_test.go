package attribution

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davidgarza-dev/fieldmark-backend/pkg/db/models"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/enums"
	pkgerrors "github.com/davidgarza-dev/fieldmark-backend/pkg/errors"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/outbox"
)

type stubAttributionRepo struct {
	photo       *models.Photo
	visit       *models.Visit
	industry    *models.Industry
	assignments []models.IndustryAssignment
	created     *models.PhotoIndustry
	createErr   error
}

func (s *stubAttributionRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubAttributionRepo) FindPhotoByID(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	if s.photo == nil || s.photo.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.photo, nil
}

func (s *stubAttributionRepo) FindVisitByID(ctx context.Context, id uuid.UUID) (*models.Visit, error) {
	if s.visit == nil || s.visit.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.visit, nil
}

func (s *stubAttributionRepo) FindIndustryByID(ctx context.Context, id uuid.UUID) (*models.Industry, error) {
	if s.industry == nil || s.industry.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.industry, nil
}

func (s *stubAttributionRepo) ListAssignments(ctx context.Context, promoterID, industryID uuid.UUID) ([]models.IndustryAssignment, error) {
	return s.assignments, nil
}

func (s *stubAttributionRepo) CreatePhotoIndustry(ctx context.Context, link *models.PhotoIndustry) error {
	if s.createErr != nil {
		return s.createErr
	}
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	s.created = link
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type attributionFixture struct {
	promoterID uuid.UUID
	storeID    uuid.UUID
	photo      *models.Photo
	visit      *models.Visit
	industry   *models.Industry
}

func newAttributionFixture() attributionFixture {
	promoterID := uuid.New()
	storeID := uuid.New()
	visit := &models.Visit{
		ID:         uuid.New(),
		PromoterID: promoterID,
		StoreID:    storeID,
		CheckInAt:  time.Now().UTC(),
	}
	photo := &models.Photo{
		ID:      uuid.New(),
		VisitID: visit.ID,
		URL:     "https://storage.googleapis.com/fieldmark-media/photos/display_01.jpg",
		Type:    enums.PhotoTypeOther,
	}
	industry := &models.Industry{ID: uuid.New(), Name: "Bimbo", IsActive: true}
	return attributionFixture{
		promoterID: promoterID,
		storeID:    storeID,
		photo:      photo,
		visit:      visit,
		industry:   industry,
	}
}

func newAttributionService(t *testing.T, repo *stubAttributionRepo, sink *stubOutbox) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo, TxRunner: stubTxRunner{}, Outbox: sink})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func assertAttributionErrCode(t *testing.T, err error, code pkgerrors.Code) *pkgerrors.Error {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s", code, typed.Code())
	}
	return typed
}

func TestAttributeWithStoreScopedAssignment(t *testing.T) {
	fx := newAttributionFixture()
	repo := &stubAttributionRepo{
		photo:    fx.photo,
		visit:    fx.visit,
		industry: fx.industry,
		assignments: []models.IndustryAssignment{{
			ID:         uuid.New(),
			PromoterID: fx.promoterID,
			IndustryID: fx.industry.ID,
			StoreID:    &fx.storeID,
			IsActive:   true,
		}},
	}
	sink := &stubOutbox{}
	svc := newAttributionService(t, repo, sink)

	dto, err := svc.Attribute(context.Background(), fx.promoterID, fx.photo.ID, AttributeRequest{IndustryID: fx.industry.ID})
	if err != nil {
		t.Fatalf("Attribute returned error: %v", err)
	}
	if dto.StoreID != fx.storeID || dto.VisitID != fx.visit.ID || dto.PromoterID != fx.promoterID {
		t.Fatalf("denormalized fields incorrect: %+v", dto)
	}
	if repo.created == nil {
		t.Fatal("expected link persisted")
	}
	if len(sink.events) != 1 || sink.events[0].EventType != enums.OutboxEventPhotoAttributed {
		t.Fatalf("expected one photo.attributed event, got %+v", sink.events)
	}
}

func TestAttributeWithWildcardAssignment(t *testing.T) {
	fx := newAttributionFixture()
	repo := &stubAttributionRepo{
		photo:    fx.photo,
		visit:    fx.visit,
		industry: fx.industry,
		assignments: []models.IndustryAssignment{{
			ID:         uuid.New(),
			PromoterID: fx.promoterID,
			IndustryID: fx.industry.ID,
			StoreID:    nil,
			IsActive:   true,
		}},
	}
	svc := newAttributionService(t, repo, &stubOutbox{})

	if _, err := svc.Attribute(context.Background(), fx.promoterID, fx.photo.ID, AttributeRequest{IndustryID: fx.industry.ID}); err != nil {
		t.Fatalf("wildcard assignment should authorize any store, got %v", err)
	}
}

func TestAttributeRejectsWithoutAssignment(t *testing.T) {
	fx := newAttributionFixture()
	otherStore := uuid.New()
	repo := &stubAttributionRepo{
		photo:    fx.photo,
		visit:    fx.visit,
		industry: fx.industry,
		assignments: []models.IndustryAssignment{{
			ID:         uuid.New(),
			PromoterID: fx.promoterID,
			IndustryID: fx.industry.ID,
			StoreID:    &otherStore,
			IsActive:   true,
		}},
	}
	svc := newAttributionService(t, repo, &stubOutbox{})

	_, err := svc.Attribute(context.Background(), fx.promoterID, fx.photo.ID, AttributeRequest{IndustryID: fx.industry.ID})
	assertAttributionErrCode(t, err, pkgerrors.CodeForbidden)
}

func TestAttributeIgnoresInactiveAssignment(t *testing.T) {
	fx := newAttributionFixture()
	repo := &stubAttributionRepo{
		photo:    fx.photo,
		visit:    fx.visit,
		industry: fx.industry,
		assignments: []models.IndustryAssignment{{
			ID:         uuid.New(),
			PromoterID: fx.promoterID,
			IndustryID: fx.industry.ID,
			StoreID:    &fx.storeID,
			IsActive:   false,
		}},
	}
	svc := newAttributionService(t, repo, &stubOutbox{})

	_, err := svc.Attribute(context.Background(), fx.promoterID, fx.photo.ID, AttributeRequest{IndustryID: fx.industry.ID})
	assertAttributionErrCode(t, err, pkgerrors.CodeForbidden)
}

func TestAttributeHidesInactiveIndustry(t *testing.T) {
	fx := newAttributionFixture()
	fx.industry.IsActive = false
	repo := &stubAttributionRepo{photo: fx.photo, visit: fx.visit, industry: fx.industry}
	svc := newAttributionService(t, repo, &stubOutbox{})

	_, err := svc.Attribute(context.Background(), fx.promoterID, fx.photo.ID, AttributeRequest{IndustryID: fx.industry.ID})
	assertAttributionErrCode(t, err, pkgerrors.CodeNotFound)
}

func TestAttributeRejectsFacadePhoto(t *testing.T) {
	fx := newAttributionFixture()
	fx.photo.Type = enums.PhotoTypeFacadeCheckIn
	repo := &stubAttributionRepo{photo: fx.photo, visit: fx.visit, industry: fx.industry}
	svc := newAttributionService(t, repo, &stubOutbox{})

	_, err := svc.Attribute(context.Background(), fx.promoterID, fx.photo.ID, AttributeRequest{IndustryID: fx.industry.ID})
	assertAttributionErrCode(t, err, pkgerrors.CodeValidation)
}

func TestAttributeRejectsForeignPhoto(t *testing.T) {
	fx := newAttributionFixture()
	repo := &stubAttributionRepo{photo: fx.photo, visit: fx.visit, industry: fx.industry}
	svc := newAttributionService(t, repo, &stubOutbox{})

	_, err := svc.Attribute(context.Background(), uuid.New(), fx.photo.ID, AttributeRequest{IndustryID: fx.industry.ID})
	assertAttributionErrCode(t, err, pkgerrors.CodeForbidden)
}

func TestAttributeMapsDuplicateToConflict(t *testing.T) {
	fx := newAttributionFixture()
	repo := &stubAttributionRepo{
		photo:    fx.photo,
		visit:    fx.visit,
		industry: fx.industry,
		assignments: []models.IndustryAssignment{{
			PromoterID: fx.promoterID,
			IndustryID: fx.industry.ID,
			IsActive:   true,
		}},
		createErr: fmt.Errorf(`duplicate key value violates unique constraint "ux_photo_industries_pair"`),
	}
	svc := newAttributionService(t, repo, &stubOutbox{})

	_, err := svc.Attribute(context.Background(), fx.promoterID, fx.photo.ID, AttributeRequest{IndustryID: fx.industry.ID})
	typed := assertAttributionErrCode(t, err, pkgerrors.CodeConflict)

	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	if details["industry_id"] != fx.industry.ID.String() {
		t.Fatalf("expected industry_id detail, got %v", details)
	}
}

func TestAttributeUnknownPhotoIsNotFound(t *testing.T) {
	svc := newAttributionService(t, &stubAttributionRepo{}, &stubOutbox{})

	_, err := svc.Attribute(context.Background(), uuid.New(), uuid.New(), AttributeRequest{IndustryID: uuid.New()})
	assertAttributionErrCode(t, err, pkgerrors.CodeNotFound)
}

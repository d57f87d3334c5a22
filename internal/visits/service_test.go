package visits

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

type stubVisitsRepo struct {
	visit         *models.Visit
	openVisit     *models.Visit
	listRows      []models.Visit
	created       *models.Visit
	closed        *models.Visit
	upsertedPhoto *models.Photo
	createdPhoto  *models.Photo
	createErr     error
	closeErr      error
}

func (s *stubVisitsRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubVisitsRepo) Create(ctx context.Context, visit *models.Visit) error {
	if s.createErr != nil {
		return s.createErr
	}
	if visit.ID == uuid.Nil {
		visit.ID = uuid.New()
	}
	s.created = visit
	return nil
}

func (s *stubVisitsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Visit, error) {
	if s.visit == nil || s.visit.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.visit
	return &copied, nil
}

func (s *stubVisitsRepo) FindOpenByPromoter(ctx context.Context, promoterID uuid.UUID) (*models.Visit, error) {
	if s.openVisit == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.openVisit, nil
}

func (s *stubVisitsRepo) Close(ctx context.Context, visit *models.Visit) error {
	if s.closeErr != nil {
		return s.closeErr
	}
	s.closed = visit
	return nil
}

func (s *stubVisitsRepo) UpsertFacadePhoto(ctx context.Context, photo *models.Photo) error {
	if photo.ID == uuid.Nil {
		photo.ID = uuid.New()
	}
	s.upsertedPhoto = photo
	return nil
}

func (s *stubVisitsRepo) CreatePhoto(ctx context.Context, photo *models.Photo) error {
	if photo.ID == uuid.Nil {
		photo.ID = uuid.New()
	}
	s.createdPhoto = photo
	return nil
}

func (s *stubVisitsRepo) ListPhotosByVisit(ctx context.Context, visitID uuid.UUID) ([]models.Photo, error) {
	return nil, nil
}

func (s *stubVisitsRepo) List(ctx context.Context, filter ListFilter) ([]models.Visit, error) {
	return s.listRows, nil
}

func (s *stubVisitsRepo) ListOpenVisitsOlderThan(ctx context.Context, cutoff time.Time) ([]models.Visit, error) {
	return nil, nil
}

type stubStoreFinder struct {
	store *models.Store
}

func (s *stubStoreFinder) FindStoreByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	if s.store == nil || s.store.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.store, nil
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

func newVisitService(t *testing.T, repo *stubVisitsRepo, stores *stubStoreFinder, sink *stubOutbox, now time.Time) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:      repo,
		StoreRepo: stores,
		TxRunner:  stubTxRunner{},
		Outbox:    sink,
		Clock:     func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func assertVisitErrCode(t *testing.T, err error, code pkgerrors.Code) *pkgerrors.Error {
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

func TestCheckInCreatesVisitAndEmitsEvent(t *testing.T) {
	promoterID := uuid.New()
	store := &models.Store{ID: uuid.New(), Name: "Soriana Centro", IsActive: true}
	repo := &stubVisitsRepo{}
	sink := &stubOutbox{}
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newVisitService(t, repo, &stubStoreFinder{store: store}, sink, now)

	dto, err := svc.CheckIn(context.Background(), promoterID, CheckInRequest{
		StoreID:        store.ID,
		Location:       LocationDTO{Lat: 25.67, Lng: -100.31},
		FacadePhotoURL: "https://storage.googleapis.com/fieldmark-media/photos/facade_checkin.jpg",
	})
	if err != nil {
		t.Fatalf("CheckIn returned error: %v", err)
	}
	if dto.PromoterID != promoterID || dto.StoreID != store.ID {
		t.Fatalf("unexpected dto identity: %+v", dto)
	}
	if !dto.Open {
		t.Fatal("expected new visit to be open")
	}
	if !dto.CheckInAt.Equal(now) {
		t.Fatalf("expected check-in at %s, got %s", now, dto.CheckInAt)
	}
	if repo.created == nil {
		t.Fatal("expected visit persisted")
	}
	if repo.upsertedPhoto == nil || repo.upsertedPhoto.Type != enums.PhotoTypeFacadeCheckIn {
		t.Fatalf("expected facade check-in photo, got %+v", repo.upsertedPhoto)
	}
	if len(sink.events) != 1 || sink.events[0].EventType != enums.OutboxEventVisitCheckedIn {
		t.Fatalf("expected one checked_in event, got %+v", sink.events)
	}
}

func TestCheckInRejectsSecondOpenVisitWithExistingID(t *testing.T) {
	promoterID := uuid.New()
	store := &models.Store{ID: uuid.New(), IsActive: true}
	open := &models.Visit{ID: uuid.New(), PromoterID: promoterID, StoreID: store.ID}
	repo := &stubVisitsRepo{
		openVisit: open,
		createErr: fmt.Errorf(`duplicate key value violates unique constraint "ux_visits_open_promoter"`),
	}
	svc := newVisitService(t, repo, &stubStoreFinder{store: store}, &stubOutbox{}, time.Now())

	_, err := svc.CheckIn(context.Background(), promoterID, CheckInRequest{
		StoreID:        store.ID,
		FacadePhotoURL: "https://storage.googleapis.com/fieldmark-media/photos/facade_checkin.jpg",
	})
	typed := assertVisitErrCode(t, err, pkgerrors.CodeConflict)

	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	if details["existing_visit_id"] != open.ID.String() {
		t.Fatalf("expected existing_visit_id %s, got %v", open.ID, details["existing_visit_id"])
	}
}

func TestCheckInRejectsInactiveStore(t *testing.T) {
	store := &models.Store{ID: uuid.New(), IsActive: false}
	svc := newVisitService(t, &stubVisitsRepo{}, &stubStoreFinder{store: store}, &stubOutbox{}, time.Now())

	_, err := svc.CheckIn(context.Background(), uuid.New(), CheckInRequest{StoreID: store.ID})
	assertVisitErrCode(t, err, pkgerrors.CodeValidation)
}

func TestCheckInRejectsUnknownStore(t *testing.T) {
	svc := newVisitService(t, &stubVisitsRepo{}, &stubStoreFinder{}, &stubOutbox{}, time.Now())

	_, err := svc.CheckIn(context.Background(), uuid.New(), CheckInRequest{StoreID: uuid.New()})
	assertVisitErrCode(t, err, pkgerrors.CodeNotFound)
}

func TestCheckOutClosesVisitWithHours(t *testing.T) {
	promoterID := uuid.New()
	checkIn := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	visit := &models.Visit{
		ID:         uuid.New(),
		PromoterID: promoterID,
		StoreID:    uuid.New(),
		CheckInAt:  checkIn,
	}
	repo := &stubVisitsRepo{visit: visit}
	sink := &stubOutbox{}
	now := checkIn.Add(2*time.Hour + 30*time.Minute)
	svc := newVisitService(t, repo, &stubStoreFinder{}, sink, now)

	dto, err := svc.CheckOut(context.Background(), promoterID, visit.ID, CheckOutRequest{
		Location:       LocationDTO{Lat: 25.67, Lng: -100.31},
		FacadePhotoURL: "https://storage.googleapis.com/fieldmark-media/photos/facade_checkout.jpg",
	})
	if err != nil {
		t.Fatalf("CheckOut returned error: %v", err)
	}
	if dto.Open {
		t.Fatal("expected visit to be closed")
	}
	if dto.HoursWorked == nil || *dto.HoursWorked != 2.5 {
		t.Fatalf("expected 2.5 hours worked, got %v", dto.HoursWorked)
	}
	if repo.closed == nil {
		t.Fatal("expected close persisted")
	}
	if repo.upsertedPhoto == nil || repo.upsertedPhoto.Type != enums.PhotoTypeFacadeCheckOut {
		t.Fatalf("expected facade check-out photo, got %+v", repo.upsertedPhoto)
	}
	if len(sink.events) != 1 || sink.events[0].EventType != enums.OutboxEventVisitCheckedOut {
		t.Fatalf("expected one checked_out event, got %+v", sink.events)
	}
}

func TestCheckOutRejectsClosedVisit(t *testing.T) {
	promoterID := uuid.New()
	closedAt := time.Now().UTC()
	visit := &models.Visit{
		ID:         uuid.New(),
		PromoterID: promoterID,
		CheckInAt:  closedAt.Add(-time.Hour),
		CheckOutAt: &closedAt,
	}
	svc := newVisitService(t, &stubVisitsRepo{visit: visit}, &stubStoreFinder{}, &stubOutbox{}, time.Now())

	_, err := svc.CheckOut(context.Background(), promoterID, visit.ID, CheckOutRequest{})
	assertVisitErrCode(t, err, pkgerrors.CodeStateConflict)
}

func TestCheckOutHidesForeignVisit(t *testing.T) {
	visit := &models.Visit{ID: uuid.New(), PromoterID: uuid.New(), CheckInAt: time.Now().UTC()}
	svc := newVisitService(t, &stubVisitsRepo{visit: visit}, &stubStoreFinder{}, &stubOutbox{}, time.Now())

	_, err := svc.CheckOut(context.Background(), uuid.New(), visit.ID, CheckOutRequest{})
	assertVisitErrCode(t, err, pkgerrors.CodeNotFound)
}

func TestCheckOutMapsLostRaceToStateConflict(t *testing.T) {
	promoterID := uuid.New()
	visit := &models.Visit{ID: uuid.New(), PromoterID: promoterID, CheckInAt: time.Now().UTC().Add(-time.Hour)}
	repo := &stubVisitsRepo{visit: visit, closeErr: gorm.ErrRecordNotFound}
	svc := newVisitService(t, repo, &stubStoreFinder{}, &stubOutbox{}, time.Now())

	_, err := svc.CheckOut(context.Background(), promoterID, visit.ID, CheckOutRequest{})
	assertVisitErrCode(t, err, pkgerrors.CodeStateConflict)
}

func TestAttachPhotosRoutesFacadeAndDisplay(t *testing.T) {
	promoterID := uuid.New()
	visit := &models.Visit{ID: uuid.New(), PromoterID: promoterID, CheckInAt: time.Now().UTC()}
	repo := &stubVisitsRepo{visit: visit}
	svc := newVisitService(t, repo, &stubStoreFinder{}, &stubOutbox{}, time.Now())

	dtos, err := svc.AttachPhotos(context.Background(), promoterID, visit.ID, AttachPhotosRequest{
		Photos: []PhotoInput{
			{URL: "https://storage.googleapis.com/fieldmark-media/photos/facade.jpg", Type: string(enums.PhotoTypeFacadeCheckIn)},
			{URL: "https://storage.googleapis.com/fieldmark-media/photos/display_01.jpg", Type: string(enums.PhotoTypeOther)},
		},
	})
	if err != nil {
		t.Fatalf("AttachPhotos returned error: %v", err)
	}
	if len(dtos) != 2 {
		t.Fatalf("expected 2 photos back, got %d", len(dtos))
	}
	if repo.upsertedPhoto == nil || repo.upsertedPhoto.Type != enums.PhotoTypeFacadeCheckIn {
		t.Fatal("facade photo must use the upsert path")
	}
	if repo.createdPhoto == nil || repo.createdPhoto.Type != enums.PhotoTypeOther {
		t.Fatal("display photo must use the plain insert path")
	}
}

func TestAttachPhotosAcceptsClosedVisit(t *testing.T) {
	promoterID := uuid.New()
	closedAt := time.Now().UTC()
	visit := &models.Visit{ID: uuid.New(), PromoterID: promoterID, CheckInAt: closedAt.Add(-time.Hour), CheckOutAt: &closedAt}
	repo := &stubVisitsRepo{visit: visit}
	svc := newVisitService(t, repo, &stubStoreFinder{}, &stubOutbox{}, time.Now())

	_, err := svc.AttachPhotos(context.Background(), promoterID, visit.ID, AttachPhotosRequest{
		Photos: []PhotoInput{{URL: "https://storage.googleapis.com/fieldmark-media/photos/late.jpg", Type: string(enums.PhotoTypeOther)}},
	})
	if err != nil {
		t.Fatalf("late upload to a closed visit must succeed, got %v", err)
	}
	if repo.createdPhoto == nil {
		t.Fatal("expected late photo persisted")
	}
}

func TestAttachPhotosRejectsUnknownType(t *testing.T) {
	promoterID := uuid.New()
	visit := &models.Visit{ID: uuid.New(), PromoterID: promoterID, CheckInAt: time.Now().UTC()}
	svc := newVisitService(t, &stubVisitsRepo{visit: visit}, &stubStoreFinder{}, &stubOutbox{}, time.Now())

	_, err := svc.AttachPhotos(context.Background(), promoterID, visit.ID, AttachPhotosRequest{
		Photos: []PhotoInput{{URL: "https://storage.googleapis.com/fieldmark-media/photos/x.jpg", Type: "selfie"}},
	})
	assertVisitErrCode(t, err, pkgerrors.CodeValidation)
}

func TestAttachPhotosHidesForeignVisit(t *testing.T) {
	visit := &models.Visit{ID: uuid.New(), PromoterID: uuid.New(), CheckInAt: time.Now().UTC()}
	svc := newVisitService(t, &stubVisitsRepo{visit: visit}, &stubStoreFinder{}, &stubOutbox{}, time.Now())

	_, err := svc.AttachPhotos(context.Background(), uuid.New(), visit.ID, AttachPhotosRequest{
		Photos: []PhotoInput{{URL: "https://storage.googleapis.com/fieldmark-media/photos/x.jpg", Type: string(enums.PhotoTypeOther)}},
	})
	assertVisitErrCode(t, err, pkgerrors.CodeNotFound)
}

func TestListPaginatesAndEmitsCursor(t *testing.T) {
	rows := make([]models.Visit, 0, 3)
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		rows = append(rows, models.Visit{
			ID:         uuid.New(),
			PromoterID: uuid.New(),
			StoreID:    uuid.New(),
			CheckInAt:  base.Add(time.Duration(i) * time.Hour),
			CreatedAt:  base.Add(time.Duration(i) * time.Hour),
		})
	}
	repo := &stubVisitsRepo{listRows: rows}
	svc := newVisitService(t, repo, &stubStoreFinder{}, &stubOutbox{}, time.Now())

	page, err := svc.List(context.Background(), ListFilter{Limit: 2})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(page.Visits) != 2 {
		t.Fatalf("expected 2 visits on page, got %d", len(page.Visits))
	}
	if page.NextCursor == "" {
		t.Fatal("expected next cursor when more rows remain")
	}
}

func TestListOmitsCursorOnFinalPage(t *testing.T) {
	repo := &stubVisitsRepo{listRows: []models.Visit{{ID: uuid.New(), CheckInAt: time.Now().UTC()}}}
	svc := newVisitService(t, repo, &stubStoreFinder{}, &stubOutbox{}, time.Now())

	page, err := svc.List(context.Background(), ListFilter{Limit: 2})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(page.Visits) != 1 || page.NextCursor != "" {
		t.Fatalf("expected single row and no cursor, got %+v", page)
	}
}

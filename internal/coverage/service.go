package coverage

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davidgarza-dev/fieldmark-backend/pkg/db/models"
	pkgerrors "github.com/davidgarza-dev/fieldmark-backend/pkg/errors"
)

// legacyExpectedPhotos is the historical fixed target used before per-promoter
// quotas existed. It only applies when a promoter has no active quota row.
const legacyExpectedPhotos = 3

// Service exposes the read-only coverage projections. Nothing here caches;
// every call re-derives from the attribution and requirement rows.
type Service interface {
	StoreCoverage(ctx context.Context, storeID uuid.UUID, date time.Time) (*StoreCoverageReportDTO, error)
	VisitCoverage(ctx context.Context, visitID uuid.UUID) (*VisitCoverageDTO, error)
	MissingPhotos(ctx context.Context, date time.Time) (*MissingPhotosReportDTO, error)
}

type service struct {
	repo Repository
	loc  *time.Location
}

type ServiceParams struct {
	Repo Repository
	// Location sets the day-boundary timezone. Defaults to UTC.
	Location *time.Location
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coverage repo is required")
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	return &service{repo: params.Repo, loc: loc}, nil
}

// StoreCoverage reports the day's coverage for one store, or for every store
// with requirements when storeID is nil. Coverage is store-wide: every visit
// of the day contributes to the covered set.
func (s *service) StoreCoverage(ctx context.Context, storeID uuid.UUID, date time.Time) (*StoreCoverageReportDTO, error) {
	window := DayWindow(date, s.loc)

	var stores []models.Store
	if storeID != uuid.Nil {
		store, err := s.repo.FindStoreByID(ctx, storeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
		}
		stores = []models.Store{*store}
	} else {
		listed, err := s.repo.ListStoresWithRequirements(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
		}
		stores = listed
	}

	report := &StoreCoverageReportDTO{
		Date:   window.Start.Format("2006-01-02"),
		Stores: make([]StoreCoverageDTO, 0, len(stores)),
	}
	for _, store := range stores {
		entry, err := s.storeEntry(ctx, store, window)
		if err != nil {
			return nil, err
		}
		if len(entry.Required) > 0 {
			report.StoresWithRequirements++
			if entry.Complete {
				report.CompleteStores++
			}
		}
		report.Stores = append(report.Stores, *entry)
	}

	// Pending-first: the stores needing attention sort to the top.
	sort.SliceStable(report.Stores, func(i, j int) bool {
		return len(report.Stores[i].Pending) > len(report.Stores[j].Pending)
	})

	if report.StoresWithRequirements > 0 {
		report.ComplianceRate = roundPercent(report.CompleteStores, report.StoresWithRequirements)
	} else {
		report.ComplianceRate = 100
	}
	return report, nil
}

func (s *service) storeEntry(ctx context.Context, store models.Store, window Window) (*StoreCoverageDTO, error) {
	required, err := s.repo.ListRequiredIndustries(ctx, store.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list required industries")
	}
	coveredIDs, err := s.repo.ListCoveredIndustryIDs(ctx, store.ID, window)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list covered industries")
	}

	covered, pending, percent := splitCoverage(required, coveredIDs)
	entry := &StoreCoverageDTO{
		StoreID:         store.ID,
		StoreName:       store.Name,
		Required:        industryRefs(required),
		Covered:         covered,
		Pending:         pending,
		PercentComplete: percent,
		Complete:        percent == 100,
	}

	latest, err := s.repo.LatestVisitForStore(ctx, store.ID, window)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load latest visit")
	}
	if latest != nil {
		entry.LastVisit = visitSummary(*latest)
	}
	return entry, nil
}

// VisitCoverage scopes the computation to one visit's attributions.
func (s *service) VisitCoverage(ctx context.Context, visitID uuid.UUID) (*VisitCoverageDTO, error) {
	if visitID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "visit id is required")
	}
	visit, err := s.repo.FindVisitByID(ctx, visitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "visit not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load visit")
	}

	required, err := s.repo.ListRequiredIndustries(ctx, visit.StoreID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list required industries")
	}
	attributedIDs, err := s.repo.ListVisitIndustryIDs(ctx, visit.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list visit attributions")
	}

	covered, pending, percent := splitCoverage(required, attributedIDs)
	return &VisitCoverageDTO{
		VisitID:         visit.ID,
		PromoterID:      visit.PromoterID,
		StoreID:         visit.StoreID,
		Required:        industryRefs(required),
		Covered:         covered,
		Pending:         pending,
		PercentComplete: percent,
		Complete:        percent == 100,
	}, nil
}

// MissingPhotos compares each visit's display-photo count for the day against
// the promoter's active quota, falling back to the legacy fixed target.
func (s *service) MissingPhotos(ctx context.Context, date time.Time) (*MissingPhotosReportDTO, error) {
	window := DayWindow(date, s.loc)
	visits, err := s.repo.ListVisitsInWindow(ctx, window)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list visits")
	}

	visitIDs := make([]uuid.UUID, 0, len(visits))
	for _, visit := range visits {
		visitIDs = append(visitIDs, visit.ID)
	}
	counts, err := s.repo.CountDisplayPhotos(ctx, visitIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count photos")
	}

	report := &MissingPhotosReportDTO{
		Date:   window.Start.Format("2006-01-02"),
		Visits: make([]MissingPhotosEntryDTO, 0, len(visits)),
	}
	quotas := make(map[uuid.UUID]int)
	for _, visit := range visits {
		expected, ok := quotas[visit.PromoterID]
		if !ok {
			expected = s.expectedPhotos(ctx, visit.PromoterID)
			quotas[visit.PromoterID] = expected
		}

		count := counts[visit.ID]
		entry := MissingPhotosEntryDTO{
			VisitID:        visit.ID,
			PromoterID:     visit.PromoterID,
			StoreID:        visit.StoreID,
			CheckInAt:      visit.CheckInAt,
			PhotoCount:     count,
			ExpectedPhotos: expected,
			Flagged:        count < expected,
		}
		if count < expected {
			entry.Missing = expected - count
			report.Flagged++
		}
		report.Visits = append(report.Visits, entry)
	}

	// Worst offenders first.
	sort.SliceStable(report.Visits, func(i, j int) bool {
		return report.Visits[i].Missing > report.Visits[j].Missing
	})
	return report, nil
}

func (s *service) expectedPhotos(ctx context.Context, promoterID uuid.UUID) int {
	quota, err := s.repo.FindActiveQuota(ctx, promoterID)
	if err != nil || quota == nil {
		return legacyExpectedPhotos
	}
	return quota.ExpectedPhotos
}

// splitCoverage partitions the required set against the covered ids and
// computes the rounded completion percentage. An empty required set is
// vacuously 100% complete.
func splitCoverage(required []models.Industry, coveredIDs []uuid.UUID) (covered, pending []IndustryRefDTO, percent int) {
	coveredSet := make(map[uuid.UUID]struct{}, len(coveredIDs))
	for _, id := range coveredIDs {
		coveredSet[id] = struct{}{}
	}

	covered = make([]IndustryRefDTO, 0, len(required))
	pending = make([]IndustryRefDTO, 0)
	for _, industry := range required {
		ref := IndustryRefDTO{ID: industry.ID, Name: industry.Name}
		if _, ok := coveredSet[industry.ID]; ok {
			covered = append(covered, ref)
		} else {
			pending = append(pending, ref)
		}
	}

	if len(required) == 0 {
		return covered, pending, 100
	}
	return covered, pending, roundPercent(len(covered), len(required))
}

func roundPercent(part, whole int) int {
	return int(math.Round(float64(part) / float64(whole) * 100))
}

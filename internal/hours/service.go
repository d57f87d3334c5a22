package hours

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/davidgarza-dev/fieldmark-backend/pkg/enums"
	pkgerrors "github.com/davidgarza-dev/fieldmark-backend/pkg/errors"
)

var (
	hundred          = decimal.NewFromInt(100)
	warningThreshold = decimal.NewFromInt(80)
)

// Service produces the worked-vs-expected hours report.
type Service interface {
	Report(ctx context.Context, q Query) (*ReportDTO, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "hours repo is required")
	}
	return &service{repo: repo}, nil
}

// Report cross-references targeted route assignments against closed-visit
// hours. Promoter rollups sum expected and worked before dividing.
func (s *service) Report(ctx context.Context, q Query) (*ReportDTO, error) {
	if q.End.Before(q.Start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end precedes start")
	}

	// Start and End are inclusive report dates; the repo filter is half-open,
	// so the query window ends at the midnight after End. Start == End is a
	// one-day report.
	window := q
	window.End = q.End.AddDate(0, 0, 1)

	assignments, err := s.repo.ListTargetedAssignments(ctx, q.PromoterID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assignments")
	}
	sums, err := s.repo.SumWorkedHours(ctx, q.PromoterID, window)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum worked hours")
	}

	storeIDs := make([]uuid.UUID, 0, len(assignments))
	for _, assignment := range assignments {
		storeIDs = append(storeIDs, assignment.StoreID)
	}
	names, err := s.repo.StoreNames(ctx, storeIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store names")
	}

	byPromoter := make(map[uuid.UUID]*PromoterDTO)
	order := make([]uuid.UUID, 0)
	for _, assignment := range assignments {
		promoter, ok := byPromoter[assignment.PromoterID]
		if !ok {
			promoter = &PromoterDTO{PromoterID: assignment.PromoterID}
			byPromoter[assignment.PromoterID] = promoter
			order = append(order, assignment.PromoterID)
		}

		expected := decimal.Zero
		if assignment.ExpectedHours != nil {
			expected = *assignment.ExpectedHours
		}
		worked := decimal.NewFromFloat(sums[pairKey{
			PromoterID: assignment.PromoterID,
			StoreID:    assignment.StoreID,
		}])

		percentage, status := classify(worked, expected)
		promoter.Entries = append(promoter.Entries, EntryDTO{
			PromoterID:    assignment.PromoterID,
			StoreID:       assignment.StoreID,
			StoreName:     names[assignment.StoreID],
			ExpectedHours: expected,
			WorkedHours:   worked,
			Percentage:    percentage,
			Status:        status,
		})
		promoter.TotalExpected = promoter.TotalExpected.Add(expected)
		promoter.TotalWorked = promoter.TotalWorked.Add(worked)
	}

	report := &ReportDTO{
		Start:     q.Start.Format("2006-01-02"),
		End:       q.End.Format("2006-01-02"),
		Promoters: make([]PromoterDTO, 0, len(order)),
	}
	for _, id := range order {
		promoter := byPromoter[id]
		promoter.Percentage, promoter.Status = classify(promoter.TotalWorked, promoter.TotalExpected)
		sort.SliceStable(promoter.Entries, func(i, j int) bool {
			return promoter.Entries[i].Percentage.LessThan(promoter.Entries[j].Percentage)
		})
		report.Promoters = append(report.Promoters, *promoter)
	}

	// Lowest completion first so supervisors see trouble at the top.
	sort.SliceStable(report.Promoters, func(i, j int) bool {
		return report.Promoters[i].Percentage.LessThan(report.Promoters[j].Percentage)
	})
	return report, nil
}

// classify applies the fixed thresholds: >=100 complete, >=80 warning,
// otherwise incomplete. A zero expectation is no_target with percentage 0.
func classify(worked, expected decimal.Decimal) (decimal.Decimal, enums.HoursStatus) {
	if expected.IsZero() {
		return decimal.Zero, enums.HoursStatusNoTarget
	}
	percentage := worked.Div(expected).Mul(hundred).Round(2)
	switch {
	case percentage.GreaterThanOrEqual(hundred):
		return percentage, enums.HoursStatusComplete
	case percentage.GreaterThanOrEqual(warningThreshold):
		return percentage, enums.HoursStatusWarning
	default:
		return percentage, enums.HoursStatusIncomplete
	}
}

package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/davidgarza-dev/fieldmark-backend/pkg/db/models"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

const defaultOpenVisitCeiling = 16 * time.Hour

type openVisitRepo interface {
	ListOpenVisitsOlderThan(ctx context.Context, cutoff time.Time) ([]models.Visit, error)
}

type OpenVisitWatchdogJobParams struct {
	Logger     *logger.Logger
	Repository openVisitRepo
	Ceiling    time.Duration
}

// NewOpenVisitWatchdogJob flags visits left open past the ceiling. The job
// only logs; visits close through check-out and nothing else.
func NewOpenVisitWatchdogJob(params OpenVisitWatchdogJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("visit repository required")
	}
	ceiling := params.Ceiling
	if ceiling <= 0 {
		ceiling = defaultOpenVisitCeiling
	}
	return &openVisitWatchdogJob{
		logg:    params.Logger,
		repo:    params.Repository,
		ceiling: ceiling,
		now:     time.Now,
	}, nil
}

type openVisitWatchdogJob struct {
	logg    *logger.Logger
	repo    openVisitRepo
	ceiling time.Duration
	now     func() time.Time
}

func (j *openVisitWatchdogJob) Name() string { return "open-visit-watchdog" }

func (j *openVisitWatchdogJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ceiling)
	stale, err := j.repo.ListOpenVisitsOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("open visit watchdog: %w", err)
	}

	for _, visit := range stale {
		visitCtx := j.logg.WithFields(ctx, map[string]any{
			"visit_id":    visit.ID,
			"promoter_id": visit.PromoterID,
			"store_id":    visit.StoreID,
			"check_in_at": visit.CheckInAt,
			"open_hours":  j.now().UTC().Sub(visit.CheckInAt).Hours(),
		})
		j.logg.Warn(visitCtx, "visit open past ceiling")
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"ceiling": j.ceiling.String(),
		"flagged": len(stale),
	})
	j.logg.Info(logCtx, "open visit watchdog complete")
	return nil
}

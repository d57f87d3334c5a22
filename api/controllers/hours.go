package controllers

import (
	"net/http"
	"time"

	"github.com/davidgarza-dev/fieldmark-backend/api/responses"
	"github.com/davidgarza-dev/fieldmark-backend/api/validators"
	"github.com/davidgarza-dev/fieldmark-backend/internal/hours"
	pkgerrors "github.com/davidgarza-dev/fieldmark-backend/pkg/errors"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/logger"
)

// HoursReport compares worked hours against route targets over a date range.
// Defaults to the current day when start/end are omitted; promoter_id narrows
// the report to one promoter.
func HoursReport(svc hours.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "hours service unavailable"))
			return
		}

		today := time.Now().UTC().Truncate(24 * time.Hour)
		start, err := validators.ParseQueryDate(r, "start", today)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.ParseQueryDate(r, "end", start)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		promoterID, err := validators.ParseQueryUUID(r, "promoter_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.Report(r.Context(), hours.Query{
			PromoterID: promoterID,
			Start:      start,
			End:        end,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}

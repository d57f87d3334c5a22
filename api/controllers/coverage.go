package controllers

import (
	"net/http"
	"time"

	"github.com/davidgarza-dev/fieldmark-backend/api/responses"
	"github.com/davidgarza-dev/fieldmark-backend/api/validators"
	"github.com/davidgarza-dev/fieldmark-backend/internal/coverage"
	pkgerrors "github.com/davidgarza-dev/fieldmark-backend/pkg/errors"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/logger"
)

// CoverageStores reports industry coverage per store for one day. An
// optional store_id narrows the report to a single store; date defaults
// to today.
func CoverageStores(svc coverage.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coverage service unavailable"))
			return
		}

		date, err := validators.ParseQueryDate(r, "date", time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		storeID, err := validators.ParseQueryUUID(r, "store_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.StoreCoverage(r.Context(), storeID, date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}

// CoverageVisit reports which required industries a single visit covered.
func CoverageVisit(svc coverage.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coverage service unavailable"))
			return
		}

		visitID, err := pathUUID(r, "visitID", "invalid visit id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.VisitCoverage(r.Context(), visitID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}

// CoverageMissingPhotos lists the day's visits that fell short of their
// display-photo quota.
func CoverageMissingPhotos(svc coverage.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coverage service unavailable"))
			return
		}

		date, err := validators.ParseQueryDate(r, "date", time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.MissingPhotos(r.Context(), date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}

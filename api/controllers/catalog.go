package controllers

import (
	"net/http"

	"github.com/davidgarza-dev/fieldmark-backend/api/responses"
	"github.com/davidgarza-dev/fieldmark-backend/internal/catalog"
	pkgerrors "github.com/davidgarza-dev/fieldmark-backend/pkg/errors"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/logger"
)

// StoreList returns the active store catalog.
func StoreList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		stores, err := svc.Stores(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stores)
	}
}

// IndustryList returns the active industries photos can be attributed to.
func IndustryList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		industries, err := svc.Industries(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, industries)
	}
}

// StoreIndustryList returns the industries a store is required to showcase.
func StoreIndustryList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		storeID, err := pathUUID(r, "storeID", "invalid store id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.StoreIndustries(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

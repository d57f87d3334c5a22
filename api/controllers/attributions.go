package controllers

import (
	"net/http"

	"github.com/davidgarza-dev/fieldmark-backend/api/responses"
	"github.com/davidgarza-dev/fieldmark-backend/api/validators"
	"github.com/davidgarza-dev/fieldmark-backend/internal/attribution"
	pkgerrors "github.com/davidgarza-dev/fieldmark-backend/pkg/errors"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/logger"
)

// PhotoAttribute tags a photo with an industry the promoter is assigned to.
func PhotoAttribute(svc attribution.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "attribution service unavailable"))
			return
		}

		promoterID, err := actorUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		photoID, err := pathUUID(r, "photoID", "invalid photo id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req attribution.AttributeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Attribute(r.Context(), promoterID, photoID, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

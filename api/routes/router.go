package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/davidgarza-dev/fieldmark-backend/api/controllers"
	"github.com/davidgarza-dev/fieldmark-backend/api/middleware"
	"github.com/davidgarza-dev/fieldmark-backend/internal/attribution"
	"github.com/davidgarza-dev/fieldmark-backend/internal/auth"
	"github.com/davidgarza-dev/fieldmark-backend/internal/catalog"
	"github.com/davidgarza-dev/fieldmark-backend/internal/coverage"
	"github.com/davidgarza-dev/fieldmark-backend/internal/hours"
	"github.com/davidgarza-dev/fieldmark-backend/internal/routesplan"
	"github.com/davidgarza-dev/fieldmark-backend/internal/uploads"
	"github.com/davidgarza-dev/fieldmark-backend/internal/visits"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/auth/session"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/config"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/db"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/enums"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/logger"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/redis"
)

// Services bundles everything the router wires into handlers. cmd/api builds
// one of these after constructing the domain services.
type Services struct {
	Auth        auth.Service
	Catalog     catalog.Service
	Visits      visits.Service
	Attribution attribution.Service
	Coverage    coverage.Service
	Hours       hours.Service
	Routes      routesplan.Service
	Uploads     uploads.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	// Interface conversions stay nil when the client is nil so the
	// middleware nil checks keep working.
	var limiter middleware.RateLimiterStore
	var idem redis.IdempotencyStore
	var cache redis.Pinger
	if redisClient != nil {
		limiter = redisClient
		idem = redisClient
		cache = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, cache, logg))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, limiter, logg)).Post("/login", controllers.Login(svcs.Auth, logg))
		r.Post("/refresh", controllers.Refresh(svcs.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, sessions, logg)).Post("/logout", controllers.Logout(svcs.Auth, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(idem, logg))

		r.Get("/ping", controllers.PrivatePing())

		// Field surface: the mobile app acting as the signed-in promoter.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRolePromoter, logg))

			r.Post("/v1/visits/check-in", controllers.VisitCheckIn(svcs.Visits, logg))
			r.Post("/v1/visits/{visitID}/check-out", controllers.VisitCheckOut(svcs.Visits, logg))
			r.Post("/v1/visits/{visitID}/photos", controllers.VisitAttachPhotos(svcs.Visits, logg))
			r.Post("/v1/photos/{photoID}/industries", controllers.PhotoAttribute(svcs.Attribution, logg))
			r.Post("/v1/photos/upload-url", controllers.PhotoUploadURL(svcs.Uploads, logg))
		})

		// Shared surface: promoters read their own data, supervisors audit.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAnyRole(logg, enums.UserRolePromoter, enums.UserRoleSupervisor))

			r.Get("/v1/stores", controllers.StoreList(svcs.Catalog, logg))
			r.Get("/v1/stores/{storeID}/industries", controllers.StoreIndustryList(svcs.Catalog, logg))
			r.Get("/v1/industries", controllers.IndustryList(svcs.Catalog, logg))
			r.Get("/v1/visits/{visitID}", controllers.VisitGet(svcs.Visits, logg))
			r.Get("/v1/visits/{visitID}/coverage", controllers.CoverageVisit(svcs.Coverage, logg))
			r.Get("/v1/promoters/{promoterID}/route", controllers.RouteGet(svcs.Routes, logg))
			r.Get("/v1/photos/download-url", controllers.PhotoDownloadURL(svcs.Uploads, logg))
		})

		// Supervisor surface: fleet reporting and route management.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleSupervisor, logg))

			r.Get("/v1/visits", controllers.VisitList(svcs.Visits, logg))
			r.Get("/v1/coverage/stores", controllers.CoverageStores(svcs.Coverage, logg))
			r.Get("/v1/coverage/missing-photos", controllers.CoverageMissingPhotos(svcs.Coverage, logg))
			r.Get("/v1/reports/hours", controllers.HoursReport(svcs.Hours, logg))
			r.Put("/v1/promoters/{promoterID}/route", controllers.RouteReplace(svcs.Routes, logg))
		})
	})

	return r
}

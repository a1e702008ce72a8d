package api

import (
	"log/slog"
	"net/http"
	"time"

	_ "loan-marketplace/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"loan-marketplace/internal/api/handler"
	mw "loan-marketplace/internal/api/middleware"
	"loan-marketplace/internal/config"
	"loan-marketplace/internal/domain/analysis"
	"loan-marketplace/internal/domain/borrower"
	"loan-marketplace/internal/domain/lender"
	"loan-marketplace/internal/domain/loanrequest"
)

// Services are the domain entry points the HTTP surface exposes.
type Services struct {
	Analysis     analysis.Service
	LoanRequests loanrequest.Service
	Lenders      lender.Service
	Borrowers    borrower.Service
	Evidence     handler.EvidenceIngester
}

func SetupRouter(svcs Services, rateLimiter *mw.RateLimiterMiddleware, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, rateLimiter, logger)
	setupMetricsEndpoint(router, cfg, logger)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	setupSwaggerEndpoint(router, logger)

	authHandler := handler.NewAuthHandler(cfg.Server.Auth, logger)
	router.Post("/auth/token", authHandler.GenerateBearerToken)

	router.Group(func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		setupLenderRoutes(r, svcs.Lenders, logger)
		setupAnalysisRoutes(r, svcs.Analysis, logger)
		setupLoanRequestRoutes(r, svcs.LoanRequests, logger)
		setupCoBorrowerRoutes(r, svcs.Borrowers, svcs.Evidence, logger)
	})

	return router
}

func setupMiddleware(router *chi.Mux, rateLimiter *mw.RateLimiterMiddleware, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))
	if rateLimiter != nil {
		router.Use(rateLimiter.Middleware)
	}
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupLenderRoutes(r chi.Router, svc lender.Service, logger *slog.Logger) {
	h := handler.NewLenderHandler(svc, logger)
	r.Get("/lenders", h.ListLenders)
}

func setupAnalysisRoutes(r chi.Router, svc analysis.Service, logger *slog.Logger) {
	h := handler.NewAnalysisHandler(svc, logger)

	r.Route("/analysis", func(r chi.Router) {
		r.Use(mw.RequireRole(mw.RoleStudent))
		r.Post("/", h.Analyze)
		r.Get("/history", h.History)
		r.Get("/history/{snapshotID}", h.GetSnapshot)
		r.Delete("/history/{snapshotID}", h.DeleteSnapshot)
	})
}

func setupLoanRequestRoutes(r chi.Router, svc loanrequest.Service, logger *slog.Logger) {
	h := handler.NewLoanRequestHandler(svc, logger)

	r.Route("/loan-requests", func(r chi.Router) {
		r.Get("/", h.List)
		r.With(mw.RequireRole(mw.RoleStudent)).Post("/", h.Create)
		r.Route("/{requestID}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.With(mw.RequireRole(mw.RoleLender)).Post("/decision", h.Decide)
			r.With(mw.RequireRole(mw.RoleStudent)).Post("/accept", h.Accept)
			r.With(mw.RequireRole(mw.RoleStudent)).Post("/cancel", h.Cancel)
		})
	})
}

func setupCoBorrowerRoutes(r chi.Router, borrowers borrower.Service, evidence handler.EvidenceIngester, logger *slog.Logger) {
	h := handler.NewCoBorrowerHandler(borrowers, evidence, logger)

	r.Route("/co-borrowers/{coBorrowerID}", func(r chi.Router) {
		r.Use(mw.RequireRole(mw.RoleStudent))
		r.Post("/evidence/{category}", h.UploadEvidence)
		r.Put("/kyc", h.RecordKYC)
	})
}

package routes

import (
	"context"
	"net/http"
	"time"

	"waste-bknd/internal/auth"
	"waste-bknd/internal/classifier"
	"waste-bknd/internal/config"
	"waste-bknd/internal/estimation"
	"waste-bknd/internal/handlers"
	"waste-bknd/internal/logger"
	mdlwr "waste-bknd/internal/middleware"
	"waste-bknd/internal/services"
	"waste-bknd/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

func NewRouter(db *bun.DB, cfg *config.Config, logr *logger.Logger) http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(mdlwr.RequestLogger(logr.Logger))
	r.Use(middleware.Recoverer)

	// CORS middleware with config
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// operator guard is off unless a public key is configured
	var jwtMgr *auth.JWTManager
	if cfg.JWTPublicKeyPath != "" {
		var err error
		jwtMgr, err = auth.NewJWTManager("", cfg.JWTPublicKeyPath, cfg.JWTIssuer)
		if err != nil {
			logr.Fatal("failed to init jwt manager", zap.Error(err))
		}
	}
	authMW := mdlwr.NewAuthMiddleware(jwtMgr, logr.Logger)

	calc := estimation.NewCalculator()
	aiClient, err := classifier.NewClient(classifier.Config{
		Endpoint:    cfg.AI.Endpoint,
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		TopP:        cfg.AI.TopP,
		MaxTokens:   cfg.AI.MaxTokens,
		Timeout:     cfg.AI.Timeout,
	}, calc.Densities.Materials(), logr.Logger)
	if err != nil {
		logr.Fatal("failed to init classifier", zap.Error(err))
	}
	if cfg.AI.APIKey == "" {
		logr.Warn("GOOGLE_API_KEY is not set; estimations will fail")
	}

	st := store.New(db)
	exposeDetails := !cfg.IsProduction()

	estimateSvc := services.NewEstimationService(
		services.NewHierarchyResolver(st, cfg.DefaultPanchayatMarker), aiClient, st, calc, logr.Logger)
	querySvc := services.NewEstimationQueryService(st, logr.Logger)
	adminSvc := services.NewAdminService(st, logr.Logger)

	estimateHandler := handlers.NewEstimateHandler(estimateSvc, logr.Logger, cfg.MaxUploadBytes(), exposeDetails)
	estimationsHandler := handlers.NewEstimationsHandler(querySvc, logr.Logger, exposeDetails)
	adminHandler := handlers.NewAdminHandler(adminSvc, logr.Logger, exposeDetails)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("ok"))
		if err != nil {
			return
		}
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := st.Ping(ctx); err != nil {
			logr.Warn("readiness check failed", zap.Error(err))
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/estimate", estimateHandler.Estimate)

		r.Route("/estimations", func(r chi.Router) {
			r.Get("/", estimationsHandler.List)
			r.Get("/export", estimationsHandler.Export)
			r.Get("/geojson", estimationsHandler.GeoJSON)
			r.Get("/{id}", estimationsHandler.Get)
		})

		r.Get("/zillas", adminHandler.ListZillas)
		r.Get("/blocks", adminHandler.ListBlocks)
		r.Get("/wards", adminHandler.ListWards)
		r.Get("/collectors", adminHandler.ListCollectors)

		r.Route("/panchayats", func(r chi.Router) {
			r.Get("/", adminHandler.ListPanchayats)

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(authMW.JWTAuth)
				r.Post("/", adminHandler.CreatePanchayat)
			})
		})
	})

	return r
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"lend/internal/application"
	"lend/internal/eligibility"
	"lend/internal/gate"
	"lend/internal/handler"
	"lend/internal/middleware"
	"lend/internal/repository/postgres"
	"lend/internal/terms"
	"lend/pkg/cache"
	"lend/pkg/config"
	"lend/pkg/logger"
	"lend/pkg/validator"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New("lend-api")

	log.Info("Starting lending service", map[string]interface{}{
		"port": cfg.Server.Port,
	})

	// Database connection
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal("Failed to connect to database", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		log.Fatal("Database ping failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	log.Info("Database connected", nil)

	// Redis connection
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal("Failed to connect to Redis", map[string]interface{}{
			"error": err.Error(),
		})
	}
	redisClient := redisCache.Client()
	log.Info("Redis connected", nil)

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	loanRepo := postgres.NewLoanApplicationRepository(db)
	validationRepo := postgres.NewValidationActionRepository(db)
	documentRepo := postgres.NewUploadedDocumentRepository(db)
	kycRepo := postgres.NewKYCRepository(db)
	progressRepo := postgres.NewPostDisbursalRepository(db)
	bankRepo := postgres.NewBankStatementRepository(db)

	// Services
	engine := terms.NewEngine(cfg.Lending, log)
	eligibilityService := eligibility.NewService(userRepo, redisCache, cfg.Lending, log)
	applicationService := application.NewService(loanRepo, userRepo, eligibilityService, engine, redisCache, cfg.Lending, log)

	navigationGate := gate.New(gate.Collaborators{
		Applications:   loanRepo,
		Validations:    validationRepo,
		Documents:      documentRepo,
		KYC:            kycRepo,
		Progress:       progressRepo,
		BankStatements: bankRepo,
	}, redisCache, cfg.Lending, log)

	// Handlers
	val := validator.New()
	applicationHandler := handler.NewApplicationHandler(applicationService, val, log)
	gateHandler := handler.NewGateHandler(navigationGate, log)
	termsHandler := handler.NewTermsHandler(engine, applicationService, val, log)
	eligibilityHandler := handler.NewEligibilityHandler(eligibilityService, userRepo, val, log)
	documentsHandler := handler.NewDocumentsHandler(validationRepo, documentRepo, log)

	// Router
	r := mux.NewRouter()

	r.Use(middleware.CORS)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Recovery)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.NewLoggingMiddleware(log).Log)
	r.Use(middleware.BodyLimit(1 << 20))
	r.Use(middleware.NewRateLimiter(redisClient, 150, time.Minute).Limit)

	authMW := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	idemMW := middleware.NewIdempotencyMiddleware(redisClient, 24*time.Hour)

	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.HandleFunc("/ready", readyCheck(db)).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(authMW.Authenticate)
	api.Use(middleware.NewRateLimiter(redisClient, 60, time.Minute).Limit)

	api.HandleFunc("/dashboard", applicationHandler.Dashboard).Methods("GET")
	api.HandleFunc("/gate/check", gateHandler.Check).Methods("GET")

	apps := api.PathPrefix("/applications").Subrouter()
	apps.Use(idemMW.Require)
	apps.HandleFunc("", applicationHandler.Submit).Methods("POST")
	apps.HandleFunc("", applicationHandler.List).Methods("GET")
	apps.HandleFunc("/{id}/step", applicationHandler.UpdateStep).Methods("PUT")
	apps.HandleFunc("/{id}/extension/quote", applicationHandler.QuoteExtension).Methods("GET")
	apps.HandleFunc("/{id}/extension", applicationHandler.ApplyExtension).Methods("POST")
	apps.HandleFunc("/{id}/kfs", termsHandler.KFS).Methods("GET")
	apps.HandleFunc("/{id}/documents/pending", documentsHandler.Pending).Methods("GET")

	api.HandleFunc("/terms/quote", termsHandler.Quote).Methods("POST")
	api.HandleFunc("/terms/emi", termsHandler.EMI).Methods("POST")

	api.HandleFunc("/eligibility/evaluate", eligibilityHandler.Evaluate).Methods("POST")
	api.HandleFunc("/eligibility/hold", eligibilityHandler.HoldStatus).Methods("GET")
	api.HandleFunc("/users/graduation", eligibilityHandler.UpdateGraduation).Methods("PUT")

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("Lending service started", map[string]interface{}{
			"address": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down lending service...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Lending service forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Lending service stopped gracefully", nil)
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	_ = r
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"lend","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
}

func readyCheck(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r
		if err := db.Ping(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"not ready","reason":"database unavailable"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready","service":"lend"}`))
	}
}

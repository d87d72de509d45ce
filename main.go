package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"rentroll-cloud/internal/accounts"
	"rentroll-cloud/internal/assistant"
	"rentroll-cloud/internal/audit"
	"rentroll-cloud/internal/auth"
	billingapp "rentroll-cloud/internal/billing/application"
	billingrepo "rentroll-cloud/internal/billing/infrastructure/postgres"
	billinghttp "rentroll-cloud/internal/billing/interfaces"
	directoryapp "rentroll-cloud/internal/directory/application"
	directoryrepo "rentroll-cloud/internal/directory/infrastructure/postgres"
	directoryhttp "rentroll-cloud/internal/directory/interfaces"
	"rentroll-cloud/internal/migrations"
	"rentroll-cloud/internal/observability/metrics"
	reportapp "rentroll-cloud/internal/reports/application"
	reporthttp "rentroll-cloud/internal/reports/interfaces"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	if err := migrations.Up(context.Background(), db); err != nil {
		logger.Fatalf("migrations error: %v", err)
	}

	metrics.Init(db, logger)
	ownerChecker := auth.NewOwnerChecker(db)
	auditRepo := audit.NewRepository(db)

	userRepo := accounts.NewRepository(db)
	accountService, err := accounts.NewService(userRepo, []byte(cfg.JWTSecret), logger)
	if err != nil {
		logger.Fatalf("account service error: %v", err)
	}
	accountHandler, err := accounts.NewHandler(accountService)
	if err != nil {
		logger.Fatalf("account handler error: %v", err)
	}

	defaults, err := directoryapp.LoadContractDefaults()
	if err != nil {
		logger.Fatalf("contract defaults error: %v", err)
	}
	houseRepo := directoryrepo.NewHouseRepository(db)
	roomRepo := directoryrepo.NewRoomRepository(db)
	contractRepo := directoryrepo.NewContractRepository(db)
	directoryService, err := directoryapp.NewDirectoryService(houseRepo, roomRepo, contractRepo, defaults, logger)
	if err != nil {
		logger.Fatalf("directory service error: %v", err)
	}
	directoryHandler, err := directoryhttp.NewDirectoryHandler(directoryService, ownerChecker, auditRepo)
	if err != nil {
		logger.Fatalf("directory handler error: %v", err)
	}

	invoiceRepo := billingrepo.NewInvoiceRepository(db)
	contractReader := billingrepo.NewContractReader(db)
	invoiceService, err := billingapp.NewInvoiceService(invoiceRepo, contractReader, logger)
	if err != nil {
		logger.Fatalf("invoice service error: %v", err)
	}
	invoiceHandler, err := billinghttp.NewInvoiceHandler(invoiceService, ownerChecker, auditRepo)
	if err != nil {
		logger.Fatalf("invoice handler error: %v", err)
	}

	reportService, err := reportapp.NewReportService(db, logger)
	if err != nil {
		logger.Fatalf("report service error: %v", err)
	}
	reportHandler, err := reporthttp.NewReportHandler(reportService)
	if err != nil {
		logger.Fatalf("report handler error: %v", err)
	}
	adminHandler, err := accounts.NewAdminHandler(userRepo, reportService)
	if err != nil {
		logger.Fatalf("admin handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, []string{"/api/v1/auth/"})
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/auth/", accountHandler)
	mux.Handle("/api/v1/houses", directoryHandler)
	mux.Handle("/api/v1/houses/", directoryHandler)
	mux.Handle("/api/v1/rooms", directoryHandler)
	mux.Handle("/api/v1/rooms/", directoryHandler)
	mux.Handle("/api/v1/contracts", directoryHandler)
	mux.Handle("/api/v1/contracts/", directoryHandler)
	mux.Handle("/api/v1/invoices", invoiceHandler)
	mux.Handle("/api/v1/invoices/", invoiceHandler)
	mux.Handle("/api/v1/reports/", reportHandler)
	mux.Handle("/api/v1/admin/", adminHandler)

	if cfg.AIBaseURL != "" {
		aiClient, err := assistant.NewClient(cfg.AIBaseURL, cfg.AIToken)
		if err != nil {
			logger.Fatalf("assistant client error: %v", err)
		}
		assistantService, err := assistant.NewService(aiClient, reportService, db, logger)
		if err != nil {
			logger.Fatalf("assistant service error: %v", err)
		}
		assistantHandler, err := assistant.NewHandler(assistantService)
		if err != nil {
			logger.Fatalf("assistant handler error: %v", err)
		}
		mux.Handle("/api/v1/assistant/", assistantHandler)
	}

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL string
	HTTPAddr    string
	JWTSecret   string
	AIBaseURL   string
	AIToken     string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL: getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:   getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		AIBaseURL:   getenvDefault("AI_BASE_URL", ""),
		AIToken:     getenvDefault("AI_TOKEN", ""),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"norahair-backend/internal/config"
	"norahair-backend/internal/env"
	"norahair-backend/internal/events"
	"norahair-backend/internal/infrastructure/paystack"
	"norahair-backend/internal/infrastructure/repo"
	"norahair-backend/internal/metrics"
	"norahair-backend/internal/server"
	"norahair-backend/internal/usecase"
)

func main() {
	env.Load(".env", ".env.local")
	envDefaults := config.EnvDefaults()

	envName := flag.String("env", envDefaults.Env, "")
	port := flag.Int("port", envDefaults.Port, "")
	dbURL := flag.String("database-url", envDefaults.DatabaseURL, "")
	jwtSecret := flag.String("jwt-secret", envDefaults.JWTSecret, "")
	kafkaBrokers := flag.String("kafka-brokers", envDefaults.KafkaBrokers, "")
	logJSON := flag.Bool("log-json", envDefaults.LogJSON, "")
	flag.Parse()

	cfg := envDefaults
	cfg.Env = *envName
	cfg.Port = *port
	cfg.DatabaseURL = *dbURL
	cfg.JWTSecret = *jwtSecret
	cfg.KafkaBrokers = *kafkaBrokers
	cfg.LogJSON = *logJSON

	log := newLogger(cfg.LogJSON)
	slog.SetDefault(log)

	var (
		orderRepo   usecase.OrderRepo
		productRepo usecase.ProductRepo
		contentRepo usecase.ContentRepo
		adminRepo   usecase.AdminRepo
		health      func(context.Context) error
	)
	if cfg.DatabaseURL != "" {
		pg, err := repo.NewPostgresRepo(cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres init failed", "err", err)
			os.Exit(1)
		}
		orderRepo, contentRepo, adminRepo = pg, pg, pg
		productRepo = pg.Products()
		health = pg.Ping
		log.Info("using postgres store")
	} else {
		orderRepo = repo.NewMemoryOrderRepo()
		productRepo = repo.NewMemoryProductRepo()
		contentRepo = repo.NewMemoryContentRepo()
		adminRepo = repo.NewMemoryAdminRepo()
		log.Warn("DATABASE_URL unset, using in-memory store")
	}

	publisher := events.NewPublisher(cfg.KafkaBrokers)
	defer publisher.Close()
	if publisher.Enabled() {
		log.Info("kafka order events enabled", "brokers", cfg.KafkaBrokers)
	}

	registry := prometheus.NewRegistry()
	payMetrics := metrics.NewPaymentMetrics(registry)

	auth := &usecase.AuthService{Repo: adminRepo, JWTSecret: cfg.JWTSecret}
	if err := auth.EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Error("admin bootstrap failed", "err", err)
		os.Exit(1)
	}

	payments := &usecase.PaymentService{
		Orders:    orderRepo,
		Products:  productRepo,
		Verifier:  &paystack.Client{SecretKey: cfg.PaystackSecretKey},
		Events:    publisher,
		Metrics:   payMetrics,
		SecretKey: cfg.PaystackSecretKey,
		PublicKey: cfg.PaystackPublicKey,
		Log:       log,
	}

	srv := server.New(cfg, server.Deps{
		Payments: payments,
		Orders:   &usecase.OrderService{Repo: orderRepo},
		Products: &usecase.ProductService{Repo: productRepo},
		Content:  &usecase.ContentService{Repo: contentRepo},
		Auth:     auth,
		Registry: registry,
		Health:   health,
		Log:      log,
	})

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("listening", "port", cfg.Port, "env", cfg.Env)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
}

func newLogger(jsonFormat bool) *slog.Logger {
	if jsonFormat {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

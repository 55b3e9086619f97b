package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/TimurManjosov/ledgerrules/internal/api"
	"github.com/TimurManjosov/ledgerrules/internal/audit"
	"github.com/TimurManjosov/ledgerrules/internal/auth"
	"github.com/TimurManjosov/ledgerrules/internal/config"
	"github.com/TimurManjosov/ledgerrules/internal/i18n"
	"github.com/TimurManjosov/ledgerrules/internal/logger"
	"github.com/TimurManjosov/ledgerrules/internal/store"
	"github.com/TimurManjosov/ledgerrules/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	lg := logger.New(cfg.AppEnv, cfg.LogLevel)
	ctx := logger.WithContext(context.Background(), lg)

	catalog := i18n.NewCatalog()
	if cfg.CatalogPath != "" {
		if err := catalog.LoadFile(cfg.CatalogPath); err != nil {
			lg.Fatal().Err(err).Str("path", cfg.CatalogPath).Msg("load translations")
		}
		lg.Info().Int("languages", len(catalog.Languages())).Msg("translations loaded")
	}

	st, err := store.NewStore(ctx, cfg.StoreType, cfg.DatabaseDSN)
	if err != nil {
		lg.Fatal().Err(err).Str("store", cfg.StoreType).Msg("store")
	}
	defer st.Close()

	telemetry.Init()
	if filters, err := st.ListFilters(ctx); err == nil {
		telemetry.StoredFilters.Set(float64(len(filters)))
		lg.Info().Int("filters", len(filters)).Str("store", cfg.StoreType).Msg("store ready")
	}

	auditSvc := audit.NewService(audit.NewLogSink(lg), nil, lg, 1000)
	defer auditSvc.Close()

	srvAPI := api.NewServer(st, catalog, auth.NewAuthenticator(cfg.AdminAPIKey, cfg.AdminAPIKeyHash), api.Options{
		NumberFormat:   cfg.Format(),
		RateLimitPerIP: cfg.RateLimitPerIP,
		Logger:         &lg,
		Audit:          auditSvc,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srvAPI.Router(),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		lg.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal().Err(err).Msg("server")
		}
	}()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", telemetry.Handler())
	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux}
	go func() {
		lg.Info().Str("addr", cfg.MetricsAddr).Msg("metrics listening")
		if err := metricsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			lg.Error().Err(err).Msg("metrics server")
		}
	}()

	// SIGHUP reloads translations, SIGINT/SIGTERM shut down.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	for s := range sig {
		if s != syscall.SIGHUP {
			break
		}
		if cfg.CatalogPath == "" {
			continue
		}
		if err := catalog.LoadFile(cfg.CatalogPath); err != nil {
			lg.Error().Err(err).Msg("reload translations")
			continue
		}
		srvAPI.ReloadCatalog()
		lg.Info().Msg("translations reloaded")
	}

	ctxShut, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShut)
	_ = metricsSrv.Shutdown(ctxShut)
	lg.Info().Msg("stopped")
}

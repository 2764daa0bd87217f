package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"ledgerdash/internal/auth"
	"ledgerdash/internal/backend"
	"ledgerdash/internal/cli"
	apphttp "ledgerdash/internal/http"
	"ledgerdash/internal/log"
	"ledgerdash/internal/middleware/security"
	"ledgerdash/internal/middleware/trace"
	"ledgerdash/internal/schema"
	"ledgerdash/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()

	logger, logCloser, err := cli.SetupLogger(cfg)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer logCloser.Close()

	if cfg.UsesDefaultSecret() {
		logger.WithComponent(log.ComponentSecurity).Warn("JWT_SECRET is using its default value; set it in production")
	}

	aliases, err := schema.Load(cfg.SchemaFile)
	if err != nil {
		logger.Error("Failed to load header alias table", log.FieldError, err, "path", cfg.SchemaFile)
		os.Exit(1)
	}
	normalizer := schema.NewNormalizer(aliases)

	metrics := trace.NewMetrics("ledgerdash")
	structured := log.NewStructuredLogger(logger)
	observer := func(source string, elapsed time.Duration, rows int, err error) {
		metrics.ObserveFetch(source, elapsed, rows, err)
		structured.LogSourceFetch(context.Background(), source, rows, elapsed, err)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), time.Minute)
	result, err := backend.NewFactory(logger, observer).CreateBackend(startupCtx, backendCfg)
	cancelStartup()
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "source_backend", cfg.SourceBackend)
		os.Exit(1)
	}

	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		logger.Error("Failed to initialize token issuer", log.FieldError, err)
		os.Exit(1)
	}

	bankEnabled := cfg.BankSheetCSVURL != "" || cfg.GoogleBankRange != "" || cfg.SourceBackend == string(backend.MemorySource)
	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Ledger:             services.NewPipeline(backend.LedgerSourceName, result.Ledger, normalizer, logger),
		Bank:               services.NewPipeline(backend.BankSourceName, result.Bank, normalizer, logger),
		BankEnabled:        bankEnabled,
		Policy:             cfg.Policy(),
		PreferredLabels:    aliases.ComparisonRows,
		Location:           cfg.Location(),
		Auth:               auth.NewService(result.Users, issuer, result.Auditor, logger),
		AuthRequired:       cfg.AuthRequired,
		Metrics:            metrics,
		Logger:             logger,
		Origins:            security.ParseOrigins(cfg.Origins),
		LoginRatePerMinute: cfg.LoginRatePerMinute,
	})
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := result.Close(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Starting ledgerdash server",
		"port", cfg.Port,
		"source_backend", cfg.SourceBackend,
		"user_store", cfg.UserStore,
		"rate_mode", cfg.RateMode,
		"number_mode", cfg.NumberMode,
		"auth_required", cfg.AuthRequired,
		log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

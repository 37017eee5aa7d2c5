package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/loryanstrant/azure-openai-sora-webserver/internal/domain"
	"github.com/loryanstrant/azure-openai-sora-webserver/internal/http/handlers"
	"github.com/loryanstrant/azure-openai-sora-webserver/internal/http/httpapi"
	"github.com/loryanstrant/azure-openai-sora-webserver/internal/infra"
	"github.com/loryanstrant/azure-openai-sora-webserver/internal/infra/geoip"
	"github.com/loryanstrant/azure-openai-sora-webserver/internal/jobs"
	"github.com/loryanstrant/azure-openai-sora-webserver/internal/jobstore"
	"github.com/loryanstrant/azure-openai-sora-webserver/internal/middleware"
	"github.com/loryanstrant/azure-openai-sora-webserver/internal/providers/video"
)

func main() {
	// .env is optional.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	var lookup middleware.CountryLookup
	countries, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if countries != nil {
		lookup = countries.CountryCode
	}

	generator := video.NewSoraClient(video.SoraOptions{
		Endpoint:   cfg.AzureOpenAIEndpoint,
		APIKey:     cfg.AzureOpenAIAPIKey,
		APIVersion: cfg.AzureOpenAIAPIVersion,
	})
	validator := domain.NewValidator(
		cfg.PromptMaxLength,
		cfg.MinDurationSeconds,
		cfg.MaxDurationSeconds,
		cfg.SupportedResolutions,
	)
	store := jobstore.New(cfg.MaxStoredJobs)
	controller := jobs.NewController(jobs.Config{
		MaxConcurrentJobs:      cfg.MaxConcurrentJobs,
		PollInterval:           cfg.PollInterval,
		MaxPollAttempts:        cfg.MaxPollAttempts,
		MaxConsecutiveFailures: cfg.MaxConsecutivePollFailures,
		JobMaxAge:              cfg.JobMaxAge,
		CleanupInterval:        cfg.JobCleanupInterval,
	}, store, generator, validator, logger)

	app := handlers.NewApp(logger, controller)
	router := httpapi.NewRouter(app, cfg, lookup)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if err := controller.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("polling tasks abandoned")
	}
	if removed := controller.Cleanup(); removed > 0 {
		logger.Info().Int("removed", removed).Msg("final cleanup")
	}
	logger.Info().Msg("server stopped")
}

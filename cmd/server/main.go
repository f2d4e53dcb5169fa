package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"socialplus/services/auth-api/internal/config"
	"socialplus/services/auth-api/internal/infrastructure/database"
	"socialplus/services/auth-api/internal/infrastructure/database/repository/accountrepo"
	"socialplus/services/auth-api/internal/infrastructure/identity"
	"socialplus/services/auth-api/internal/infrastructure/logger"
	"socialplus/services/auth-api/internal/infrastructure/observability"
	"socialplus/services/auth-api/internal/infrastructure/sessiontoken"
	"socialplus/services/auth-api/internal/interfaces/httpserver"
	"socialplus/services/auth-api/internal/interfaces/httpserver/handlers"
	"socialplus/services/auth-api/internal/utils/httpclients"
)

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Setup observability
	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown telemetry")
		}
	}()

	// Storage
	db, err := database.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if cfg.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			log.Fatal().Err(err).Msg("failed to apply migrations")
		}
	}
	accounts := accountrepo.NewAccountGormRepository(db)

	// Provider verifiers share one outbound HTTP client
	providerClient := httpclients.NewClient("identity-providers", cfg.HTTPTimeout)
	facebook := identity.NewFacebookVerifier(cfg.FacebookGraphURL, cfg.FacebookAppID, cfg.FacebookAppSecret, providerClient, log)
	google := identity.NewGoogleVerifier(cfg.GoogleDiscoveryURL, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI, providerClient, log)
	microsoft := identity.NewMicrosoftVerifier(cfg.MicrosoftProfileURL, cfg.MicrosoftClientID, cfg.MicrosoftClientSecret, providerClient, log)
	twitter := identity.NewTwitterVerifier(
		cfg.TwitterConsumerKey,
		cfg.TwitterConsumerSecret,
		cfg.TwitterCallbackURL,
		cfg.TwitterRequestTokenURL,
		cfg.TwitterAccessTokenURL,
		cfg.TwitterVerifyCredentialsURL,
		providerClient,
		log,
	)

	var aad *identity.AADVerifier
	if cfg.AADEnabled {
		aad, err = identity.NewAADVerifier(ctx, cfg.AADJWKSURL, cfg.AADIssuer, cfg.AADAudience, cfg.AADRefreshJWKSInterval, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize AAD verifier")
		}
	}

	sessions, err := sessiontoken.NewService([]byte(cfg.SessionTokenSecret), cfg.SessionTokenIssuer, cfg.SessionTokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize session token service")
	}

	registry := identity.NewRegistry(facebook, google, microsoft, twitter, aad, sessions, accounts, log)

	sessionHandler := handlers.NewSessionHandler(sessions, log)
	userHandler := handlers.NewUserHandler(accounts, sessions, facebook, log)

	ready := func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}

	httpServer := httpserver.New(cfg, log, registry, sessionHandler, userHandler, ready)

	log.Info().
		Str("service", cfg.ServiceName).
		Int("port", cfg.HTTPPort).
		Str("environment", cfg.Environment).
		Msg("starting application")

	if err := httpServer.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env", "../../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}

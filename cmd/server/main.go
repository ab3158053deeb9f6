package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/agrokadry/agrojob-core/internal/adapters/http/handler"
	repo "github.com/agrokadry/agrojob-core/internal/adapters/repository/postgres"
	"github.com/agrokadry/agrojob-core/internal/core/access"
	"github.com/agrokadry/agrojob-core/internal/core/application"
	"github.com/agrokadry/agrojob-core/internal/core/company"
	"github.com/agrokadry/agrojob-core/internal/core/resume"
	"github.com/agrokadry/agrojob-core/internal/core/vacancy"
	"github.com/agrokadry/agrojob-core/internal/platform/config"
	pg "github.com/agrokadry/agrojob-core/internal/platform/db/postgres"
	"github.com/agrokadry/agrojob-core/internal/platform/email"
	"github.com/agrokadry/agrojob-core/internal/platform/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	zerolog.TimeFieldFormat = time.RFC3339

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize database pool")
	}
	defer dbPool.Close()

	txManager := pg.NewTransactionManager(dbPool)

	applicationRepo := repo.NewApplicationRepository(dbPool)
	vacancyRepo := repo.NewVacancyRepository(dbPool)
	companyRepo := repo.NewCompanyRepository(dbPool)
	membershipRepo := repo.NewMembershipRepository(dbPool)
	resumeRepo := repo.NewResumeRepository(dbPool)

	vacancyDir := repo.NewVacancyDirectory(dbPool)
	membershipDir := repo.NewMembershipDirectory(dbPool)
	resumeDir := repo.NewResumeDirectory(dbPool)

	authz := access.NewService(vacancyDir, membershipDir)

	var notifier application.Notifier
	if cfg.Email.Enabled {
		client := email.NewClient(cfg.Email.Endpoint, cfg.Email.APIKey, email.Address{
			Name:  cfg.Email.FromName,
			Email: cfg.Email.FromEmail,
		})
		notifier = email.NewStatusNotifier(client, resumeRepo, logger)
	}

	applicationSvc := application.NewService(applicationRepo, vacancyDir, resumeDir, authz, notifier, nil, txManager)
	vacancySvc := vacancy.NewService(vacancyRepo, authz, nil, txManager)
	companySvc := company.NewService(companyRepo, membershipRepo, nil, txManager)
	resumeSvc := resume.NewService(resumeRepo, nil, txManager)

	router := handler.NewRouter(applicationSvc, vacancySvc, companySvc, resumeSvc, logger)

	srv := server.New(cfg.Server.ListenAddr, router, server.Options{
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	logger.Info().Str("listen_addr", cfg.Server.ListenAddr).Msg("HTTP server listening")

	if err := srv.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server stopped with error")
	}
}

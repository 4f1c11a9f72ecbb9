package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	cloudstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"github.com/washdesk/api/internal/ai"
	domain "github.com/washdesk/api/internal/domain"
	"github.com/washdesk/api/internal/handlers"
	"github.com/washdesk/api/internal/platform/auth"
	"github.com/washdesk/api/internal/platform/config"
	pfirestore "github.com/washdesk/api/internal/platform/firestore"
	"github.com/washdesk/api/internal/platform/jobs"
	"github.com/washdesk/api/internal/platform/observability"
	"github.com/washdesk/api/internal/platform/secrets"
	platformstorage "github.com/washdesk/api/internal/platform/storage"
	"github.com/washdesk/api/internal/repositories"
	firestoreRepo "github.com/washdesk/api/internal/repositories/firestore"
	"github.com/washdesk/api/internal/services"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")

	fetcher, err := secrets.NewFetcher(ctx, secrets.WithLogger(logger.Named("secrets")))
	if err != nil {
		logger.Fatal("failed to initialise secret fetcher", zap.Error(err))
	}
	defer func() {
		if err := fetcher.Close(); err != nil {
			logger.Warn("secret fetcher close error", zap.Error(err))
		}
	}()

	cfg, err := config.Load(ctx, config.WithSecretResolver(config.SecretResolverFunc(fetcher.Resolve)))
	if err != nil {
		var validation *config.ValidationError
		if errors.As(err, &validation) {
			logger.Fatal("configuration is incomplete", zap.Strings("fields", validation.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		// A broken price table is a deployment bug; refuse to serve.
		logger.Fatal("failed to load service catalog", zap.Error(err))
	}
	logger.Info("service catalog loaded", zap.Int("services", catalog.Len()))

	firestoreProvider := pfirestore.NewProvider(cfg.Firestore)
	firestoreClient, err := firestoreProvider.Client(ctx)
	if err != nil {
		logger.Fatal("failed to initialise firestore client", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := firestoreProvider.Close(closeCtx); err != nil {
			logger.Warn("firestore close error", zap.Error(err))
		}
	}()

	verifier, err := auth.NewFirebaseVerifier(ctx, cfg.Firebase)
	if err != nil {
		logger.Fatal("failed to initialise firebase auth", zap.Error(err))
	}
	authenticator := auth.NewAuthenticator(verifier, auth.WithUserGetter(verifier))

	transactionRepo, err := firestoreRepo.NewTransactionRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise transaction repository", zap.Error(err))
	}
	staffRepo, err := firestoreRepo.NewStaffRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise staff repository", zap.Error(err))
	}

	var publisher services.TransactionEventPublisher
	if cfg.Features.EnableEventPublish && strings.TrimSpace(cfg.PubSub.TopicID) != "" {
		pubsubClient, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID)
		if err != nil {
			logger.Fatal("failed to initialise pubsub client", zap.Error(err))
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logger.Warn("pubsub close error", zap.Error(err))
			}
		}()
		topic := pubsubClient.Topic(cfg.PubSub.TopicID)
		defer topic.Stop()

		publisher, err = jobs.NewPubSubTransactionPublisher(topic)
		if err != nil {
			logger.Fatal("failed to initialise event publisher", zap.Error(err))
		}
	}

	var archiver services.ReportArchiver
	if bucket := strings.TrimSpace(cfg.Storage.ExportsBucket); bucket != "" {
		storageClient, err := cloudstorage.NewClient(ctx)
		if err != nil {
			logger.Fatal("failed to initialise storage client", zap.Error(err))
		}
		defer func() {
			if err := storageClient.Close(); err != nil {
				logger.Warn("storage close error", zap.Error(err))
			}
		}()
		writer, err := platformstorage.NewGCSWriter(storageClient)
		if err != nil {
			logger.Fatal("failed to initialise storage writer", zap.Error(err))
		}
		archiver, err = platformstorage.NewArchiver(writer, bucket, platformstorage.WithObjectPrefix(cfg.Storage.ObjectPrefix))
		if err != nil {
			logger.Fatal("failed to initialise report archiver", zap.Error(err))
		}
	}

	resolver := services.NewPricingResolver(catalog)

	transactionService, err := services.NewTransactionService(services.TransactionServiceDeps{
		Transactions: transactionRepo,
		Staff:        staffRepo,
		Resolver:     resolver,
		Publisher:    publisher,
		Clock:        time.Now,
		Logger:       observability.EventLogger(logger.Named("transactions")),
	})
	if err != nil {
		logger.Fatal("failed to initialise transaction service", zap.Error(err))
	}

	staffService, err := services.NewStaffService(services.StaffServiceDeps{
		Staff:  staffRepo,
		Clock:  time.Now,
		Logger: observability.EventLogger(logger.Named("staff")),
	})
	if err != nil {
		logger.Fatal("failed to initialise staff service", zap.Error(err))
	}

	reportService, err := services.NewReportService(services.ReportServiceDeps{
		Transactions: transactionRepo,
		Catalog:      catalog,
		Archiver:     archiver,
		Logger:       observability.EventLogger(logger.Named("reports")),
	})
	if err != nil {
		logger.Fatal("failed to initialise report service", zap.Error(err))
	}

	var suggestionService services.SuggestionService
	if cfg.Features.EnableAISuggestions {
		aiClient, err := ai.NewClient(cfg.AI)
		if err != nil {
			logger.Fatal("failed to initialise ai client", zap.Error(err))
		}
		suggestionService, err = services.NewSuggestionService(services.SuggestionServiceDeps{
			Provider: aiClient,
			Catalog:  catalog,
			Logger:   observability.EventLogger(logger.Named("suggestions")),
		})
		if err != nil {
			logger.Fatal("failed to initialise suggestion service", zap.Error(err))
		}
	}

	healthRepo, err := repositories.NewDependencyHealthRepository([]repositories.DependencyCheck{
		{
			Name: "firestore",
			Check: func(ctx context.Context) error {
				iter := firestoreClient.Collections(ctx)
				if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
					return err
				}
				return nil
			},
		},
	})
	if err != nil {
		logger.Fatal("failed to initialise health repository", zap.Error(err))
	}
	systemService, err := services.NewSystemService(services.SystemServiceDeps{HealthRepository: healthRepo})
	if err != nil {
		logger.Fatal("failed to initialise system service", zap.Error(err))
	}

	catalogHandlers := handlers.NewCatalogHandlers(authenticator, catalog, resolver)
	transactionHandlers := handlers.NewTransactionHandlers(authenticator, transactionService)
	reportHandlers := handlers.NewReportHandlers(authenticator, reportService)
	staffHandlers := handlers.NewStaffHandlers(authenticator, staffService)
	suggestionHandlers := handlers.NewSuggestionHandlers(authenticator, suggestionService)
	healthHandlers := handlers.NewHealthHandlers(handlers.WithHealthSystemService(systemService))

	projectID := strings.TrimSpace(cfg.Firebase.ProjectID)
	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(projectID),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(projectID),
	}

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithCatalogRoutes(catalogHandlers.Routes),
		handlers.WithTransactionRoutes(transactionHandlers.Routes),
		handlers.WithReportRoutes(reportHandlers.Routes),
		handlers.WithStaffRoutes(staffHandlers.Routes),
		handlers.WithSuggestionRoutes(suggestionHandlers.Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("washdesk api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func loadCatalog(cfg config.Config) (domain.Catalog, error) {
	if path := strings.TrimSpace(cfg.Catalog.File); path != "" {
		return domain.LoadCatalogFile(path)
	}
	return domain.DefaultCatalog(), nil
}

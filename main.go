package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"social-calendar/domain/repository"
	"social-calendar/infrastructure/cache"
	"social-calendar/infrastructure/clients/platforms"
	"social-calendar/infrastructure/configuration"
	"social-calendar/infrastructure/logger"
	"social-calendar/infrastructure/notification"
	"social-calendar/infrastructure/persistence"
	"social-calendar/infrastructure/pubsub"
	"social-calendar/infrastructure/servicebus"
	"social-calendar/infrastructure/vault"
	httpHandler "social-calendar/interfaces/http"
	"social-calendar/server"
	"social-calendar/usecase"

	"golang.org/x/sync/errgroup"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")

	app := configuration.C.App

	db, vendor, err := InitiateDatabase()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Database initialization failed")
		os.Exit(1)
	}
	logger.GetLogger().WithField("vendor", vendor).Info("Database connected.")

	mongoDb, err := persistence.NewMongoDb(
		configuration.C.Database.Mongo.Host,
		configuration.C.Database.Mongo.Port,
		configuration.C.Database.Mongo.User,
		configuration.C.Database.Mongo.Password,
		configuration.C.Database.Mongo.Name,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB not available - continuing without archive")
		mongoDb = nil
	} else if err := mongoDb.Ping(ctx, nil); err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB ping failed - continuing without archive")
		mongoDb = nil
	}

	pubSubClient, err := pubsub.NewPubSub(ctx, configuration.C.Pubsub.ProjectID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Pub/Sub not available - continuing without event publishing")
		pubSubClient = nil
	}

	azServiceBusClient, err := servicebus.NewServiceBus(ctx, configuration.C.ServiceBus.Namespace)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Azure Service Bus not available - continuing without Service Bus mirror")
		azServiceBusClient = nil
	}

	redisClient, err := cache.NewCache(
		ctx,
		fmt.Sprintf("%s:%s", configuration.C.RedisClient.Host, configuration.C.RedisClient.Port),
		configuration.C.RedisClient.Username,
		configuration.C.RedisClient.Password,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available - continuing without metadata cache")
		redisClient = nil
	}

	tokenVault, err := vault.NewTokenVault(configuration.C.Vault.Key)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Token vault key invalid")
		os.Exit(1)
	}

	// Repository wiring: MSSQL in production, otherwise PostgreSQL.
	var (
		jobRepo        repository.IPostJob
		accountRepo    repository.ISocialAccount
		draftRepo      repository.IDraft
		recordRepo     repository.IPublishRecord
		brandRepo      repository.IBrand
		userRepository repository.IUser
	)
	if vendor == "mssql" {
		jobRepo = persistence.NewPostJobRepositoryMSSQL(db)
		accountRepo = persistence.NewSocialAccountRepositoryMSSQL(db)
		draftRepo = persistence.NewDraftRepositoryMSSQL(db)
		recordRepo = persistence.NewPublishRecordRepositoryMSSQL(db)
		brandRepo = persistence.NewBrandRepositoryMSSQL(db)
		userRepository = persistence.NewUserRepositoryMSSQL(db)
	} else {
		if err := persistence.EnsureSocialSchema(db); err != nil {
			logger.GetLogger().WithField("error", err).Error("failed ensuring social schema")
		}
		if err := persistence.EnsurePublisherSchema(db); err != nil {
			logger.GetLogger().WithField("error", err).Error("failed ensuring publisher schema")
		}
		jobRepo = persistence.NewPostJobRepository(db)
		accountRepo = persistence.NewSocialAccountRepository(db)
		draftRepo = persistence.NewDraftRepository(db)
		recordRepo = persistence.NewPublishRecordRepository(db)
		brandRepo = persistence.NewBrandRepository(db)
		userRepository = persistence.NewUserRepository(db)
	}

	var archive repository.IPublishRecordArchive
	if mongoDb != nil {
		archive = persistence.NewPublishRecordArchive(mongoDb)
	}

	registry := platforms.NewRegistry(configuration.C.OAuth)
	mailer := notification.NewSMTPMailer(configuration.C.Mail)
	notifier := notification.NewNotifier(
		mailer,
		pubsub.NewEventPublisher(pubSubClient),
		servicebus.NewEventBus(azServiceBusClient),
		configuration.C,
	)

	userUsecase := usecase.NewUserUsecase(userRepository, app.SecretKey)
	publisherUsecase := usecase.NewPublisherUsecase(
		jobRepo, draftRepo, accountRepo, recordRepo, archive,
		tokenVault, registry, notifier,
		configuration.C.Publisher.BatchSize,
	)
	tokenUsecase := usecase.NewTokenUsecase(
		accountRepo, brandRepo, tokenVault, registry, notifier,
		configuration.C.Publisher.ExpiryWarningDays,
		configuration.C.Publisher.ReconnectBaseURL,
	)
	accountUsecase := usecase.NewSocialAccountUsecase(accountRepo, cache.NewAccountMetadataCache(redisClient))

	userHandler := httpHandler.NewUserHandler(userUsecase)
	healthHandler := httpHandler.NewHealthHandler(db)
	publisherHandler := httpHandler.NewPublisherHandler(publisherUsecase)
	tokenHandler := httpHandler.NewTokenHandler(tokenUsecase)
	accountHandler := httpHandler.NewSocialAccountHandler(accountUsecase)

	router := server.InitiateRouter(userHandler, healthHandler, publisherHandler, tokenHandler, accountHandler, userRepository)

	port := app.Port
	logger.GetLogger().WithFields(map[string]interface{}{"port": port, "tls": app.TLSEnabled}).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}
		if app.TLSEnabled {
			cert := app.TLSCertFile
			key := app.TLSKeyFile
			if cert == "" || key == "" {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
				if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			} else {
				logger.GetLogger().WithFields(map[string]interface{}{"cert": cert, "key": key}).Info("Serving HTTPS")
				if err := httpServer.ListenAndServeTLS(cert, key); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			}
		} else {
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

// InitiateDatabase connects to the configured SQL backend. Production and
// DB_VENDOR=mssql use SQL Server; everything else uses PostgreSQL.
func InitiateDatabase() (*sql.DB, string, error) {
	env := os.Getenv("ENV")
	if v := os.Getenv("DB_VENDOR"); v == "mssql" || env == "production" || env == "prod" {
		mssql, err := persistence.NewMSSQLDB()
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Cannot connect to MSSQL")
			return nil, "", err
		}
		return mssql, "mssql", nil
	}
	postgres, err := persistence.NewPostgreSQLDB()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot connect to PostgreSQL")
		return nil, "", err
	}
	return postgres, "postgres", nil
}

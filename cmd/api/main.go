package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/config"
	"github.com/xavierca1/ligue-crm/internal/infra/auth"
	"github.com/xavierca1/ligue-crm/internal/infra/database"
	"github.com/xavierca1/ligue-crm/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-crm/internal/infra/mail"
	"github.com/xavierca1/ligue-crm/internal/infra/phone"
	"github.com/xavierca1/ligue-crm/internal/infra/queue"
	"github.com/xavierca1/ligue-crm/internal/infra/session"
	"github.com/xavierca1/ligue-crm/internal/infra/tabular"
	"github.com/xavierca1/ligue-crm/internal/infra/worker"
	"github.com/xavierca1/ligue-crm/internal/logger"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("invalid configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.AppEnv,
			Release:     "crm-api@" + version,
		}); err != nil {
			log.Warn("sentry disabled", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// 1. Database
	dbHandle := database.NewHandle(cfg.DatabaseDriver, cfg.DatabaseURL)
	db, err := dbHandle.DB(ctx)
	if err != nil {
		return err
	}
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	leadRepo := database.NewLeadRepository(db)
	userRepo := database.NewUserRepository(db)

	health := handlers.NewHealthHandler(version)
	health.Register("database", func(ctx context.Context) error { return db.PingContext(ctx) })

	// 2. Sessions
	var sessions session.Store
	if cfg.RedisURL != "" {
		redisClient, err := session.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		sessions = session.NewRedisStore(redisClient, cfg.SessionTTL)
		health.Register("redis", func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	} else {
		memory := session.NewMemoryStore(cfg.SessionTTL)
		sessions = memory
		health.Register("redis", nil)
		go worker.NewSessionSweeper(memory, 5*time.Minute, log.Named("sweeper")).Start(ctx)
	}
	codec := session.NewCodec(cfg.SessionSecret, cfg.SessionTTL)

	// 3. Assignment notifications
	var notifier usecase.AssignmentNotifier = queue.NoopNotifier{}
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer rabbitMQ.Close()
		notifier = queue.NewProducer(rabbitMQ.Ch)
		health.Register("rabbitmq", func(context.Context) error {
			if !rabbitMQ.Healthy() {
				return errors.New("connection closed")
			}
			return nil
		})

		sender := mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom)
		if sender.Configured() {
			workerCh, err := rabbitMQ.Conn.Channel()
			if err != nil {
				return err
			}
			consumer := queue.NewWorker(workerCh, sender, log.Named("worker"))
			go func() {
				if err := consumer.Start(ctx, queue.QueueName); err != nil {
					log.Error("assignment worker stopped", zap.Error(err))
				}
			}()
		} else {
			log.Info("MAIL_HOST not set, assignment emails disabled")
		}
	} else {
		health.Register("rabbitmq", nil)
	}

	// 4. Use cases
	hasher := auth.NewBcryptHasher()
	userUC := usecase.NewUserUseCase(userRepo, hasher, log)
	authUC := usecase.NewAuthUseCase(userRepo, hasher)
	importUC := usecase.NewImportLeadsUseCase(leadRepo, tabular.NewDecoder(cfg.ImportMaxRows), phone.NewFormatter(cfg.ImportPhoneRegion), log)
	assignUC := usecase.NewAssignLeadsUseCase(leadRepo, userRepo, notifier, log)
	followUpUC := usecase.NewFollowUpUseCase(leadRepo, log)
	closeDealUC := usecase.NewCloseDealUseCase(leadRepo, log)
	queryUC := usecase.NewQueryLeadsUseCase(leadRepo)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		created, err := userUC.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return err
		}
		if created {
			log.Info("bootstrap admin created", zap.String("email", cfg.AdminEmail))
		}
	}

	// 5. Handlers
	limiter := handlers.NewRateLimiter(cfg.LoginRateLimit, time.Minute)
	defer limiter.Stop()

	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:           handlers.NewAuthHandler(authUC, sessions, codec, limiter, cfg.CookieSecure, log),
		Leads:          handlers.NewLeadHandler(queryUC, importUC, followUpUC, closeDealUC, cfg.ImportMaxBytes, log),
		Assignments:    handlers.NewAssignmentHandler(assignUC, log),
		Users:          handlers.NewUserHandler(userUC, log),
		Health:         health,
		Sessions:       sessions,
		Codec:          codec,
		Logger:         log,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Sentry:         cfg.SentryDSN != "",
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("CRM API listening", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/hatchlog/internal/auth"
	"github.com/mamadbah2/hatchlog/internal/config"
	"github.com/mamadbah2/hatchlog/internal/notify"
	"github.com/mamadbah2/hatchlog/internal/repository/memory"
	"github.com/mamadbah2/hatchlog/internal/repository/mongodb"
	"github.com/mamadbah2/hatchlog/internal/repository/sheets"
	"github.com/mamadbah2/hatchlog/internal/repository/store"
	"github.com/mamadbah2/hatchlog/internal/scheduler"
	"github.com/mamadbah2/hatchlog/internal/server/handlers"
	"github.com/mamadbah2/hatchlog/internal/server/router"
	"github.com/mamadbah2/hatchlog/internal/service/accounts"
	commandsvc "github.com/mamadbah2/hatchlog/internal/service/commands"
	exportsvc "github.com/mamadbah2/hatchlog/internal/service/export"
	reportingsvc "github.com/mamadbah2/hatchlog/internal/service/reporting"
	"github.com/mamadbah2/hatchlog/internal/service/tracker"
	whatsappsvc "github.com/mamadbah2/hatchlog/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/hatchlog/pkg/clients/whatsapp"
	"github.com/mamadbah2/hatchlog/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(logger.Options{Level: cfg.Log.Level, Development: cfg.Log.Development}))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	st, err := openStore(context.Background(), cfg, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to init store", zap.String("driver", cfg.Tracker.StoreDriver), zap.Error(err))
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close store", zap.Error(err))
		}
	}()

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	accountSvc := accounts.NewService(st, tokens, baseLogger.Named("svc.accounts"))

	if cfg.Auth.AdminEmail != "" {
		created, err := accountSvc.EnsureDefaultAdmin(context.Background(), cfg.Auth.AdminName, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
		if err != nil {
			baseLogger.Fatal("failed to seed admin account", zap.Error(err))
		}
		if created {
			baseLogger.Info("default admin account created", zap.String("email", cfg.Auth.AdminEmail))
		}
	}

	feed := notify.NewFeed(baseLogger.Named("notify.feed"))
	notifiers := notify.Multi{feed, notify.Audit{Recorder: accountSvc}}

	var whatsClient whatsappclient.Client
	if cfg.WhatsApp.Enabled() {
		whatsClient = whatsappclient.NewClient(cfg.WhatsApp)
		notifiers = append(notifiers, notify.NewWhatsApp(whatsClient, accountSvc, baseLogger.Named("notify.whatsapp")))
	} else {
		baseLogger.Warn("whatsapp credentials missing, webhook and outbound alerts disabled")
	}

	trackerSvc := tracker.New(st, notifiers, tracker.Options{
		Location: cfg.Scheduler.Location(),
		Renotify: cfg.Tracker.Renotify,
	}, baseLogger.Named("svc.tracker"))
	defer trackerSvc.Close()

	h := router.Handlers{
		Auth:          handlers.NewAuthHandler(accountSvc, baseLogger.Named("handlers.auth")),
		Tracker:       handlers.NewTrackerHandler(trackerSvc, baseLogger.Named("handlers.tracker")),
		Notifications: handlers.NewNotificationHandler(feed, trackerSvc, baseLogger.Named("handlers.notifications")),
	}

	if whatsClient != nil {
		reportingSvc := reportingsvc.NewService(baseLogger.Named("svc.reporting"))
		views := func(ctx context.Context, userID string) (reportingsvc.Views, error) {
			session, err := trackerSvc.Session(ctx, userID)
			if err != nil {
				return nil, err
			}
			return session, nil
		}
		senders := whatsappsvc.NewSenderCache(accountSvc, 0)
		commandDispatcher := commandsvc.NewService(senders, views, reportingSvc, baseLogger.Named("svc.commands"))
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, commandDispatcher, baseLogger.Named("svc.whatsapp"))
		h.Webhook = handlers.NewWebhookHandler(messagingSvc, cfg.WhatsApp.AppSecret, baseLogger.Named("handlers.whatsapp"))
	}

	var exporter scheduler.Exporter
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		exporter = exportsvc.NewService(sheetsRepo, accountSvc, trackerSvc, baseLogger.Named("svc.export"))
	} else {
		baseLogger.Warn("google sheets not configured, nightly export disabled")
	}

	sched := scheduler.NewScheduler(cfg.Scheduler, trackerSvc, exporter, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	engine := router.New(h, tokens, baseLogger.Named("router"))

	// No write timeout: /stream holds the response open.
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Tracker.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *config.Config, base *zap.Logger) (store.Store, error) {
	if cfg.Tracker.StoreDriver == config.DriverMemory {
		base.Warn("using in-memory store, data is lost on restart")
		return memory.New(), nil
	}
	repo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, base.Named("repo.mongodb"))
	if err != nil {
		return nil, err
	}
	return repo, nil
}

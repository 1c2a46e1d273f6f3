package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"meal-admin/api"
	"meal-admin/bot"
	"meal-admin/config"
	"meal-admin/db"
	"meal-admin/directory"
	"meal-admin/logging"
	"meal-admin/services"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	logging.Setup(cfg.HTTP.Production)

	// Check for migrate subcommand
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		runMigrate(cfg, os.Args[2:])
		return
	}

	if cfg.HTTP.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET not set")
	}

	if err := db.Init(cfg.DB); err != nil {
		logrus.WithError(err).Fatal("db")
	}
	defer db.Close()

	// Set AUTO_MIGRATE=1 (or "true") to apply pending migrations on startup.
	if v := strings.TrimSpace(os.Getenv("AUTO_MIGRATE")); v == "1" || strings.EqualFold(v, "true") {
		if err := applyMigrations(cfg.DB.DSN(), false); err != nil {
			logrus.WithError(err).Fatal("migrate")
		}
	}

	services.DefaultCompanyPortion = cfg.Portion.Default

	ctx := context.Background()
	if cfg.Admin.Code != "" && cfg.Admin.Password != "" {
		if err := services.EnsureAdmin(ctx, cfg.Admin.Code, cfg.Admin.FullName, cfg.Admin.Password); err != nil {
			logrus.WithError(err).Fatal("seed admin")
		}
		logrus.WithField("employee_code", cfg.Admin.Code).Info("admin account ensured")
	}

	opts := api.Options{Notifier: bot.Noop{}}
	if cfg.Telegram.Token != "" {
		tg, err := bot.NewTelegram(cfg.Telegram)
		if err != nil {
			logrus.WithError(err).Warn("telegram notifications disabled")
		} else {
			opts.Notifier = tg
		}
	}

	if cfg.Directory.URL != "" {
		cache := directory.NewCache(directory.NewClient(cfg.Directory), cfg.Directory.CacheTTL)
		syncer := directory.NewSyncer(cache, services.UpsertEmployee)
		opts.Directory, opts.Syncer = cache, syncer

		syncCtx, cancel := context.WithTimeout(ctx, time.Minute)
		if _, err := syncer.Sync(syncCtx); err != nil {
			logrus.WithError(err).Warn("initial directory sync failed")
		}
		cancel()

		if cfg.Directory.SyncSpec != "" {
			c, err := syncer.Schedule(cfg.Directory.SyncSpec, time.Minute)
			if err != nil {
				logrus.WithError(err).Fatal("directory sync schedule")
			}
			defer c.Stop()
		}
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.NewServer(cfg.HTTP, opts).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithField("addr", cfg.HTTP.Addr).Info("http server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("http server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("http shutdown")
	}
	logrus.Info("stopped")
}

func runMigrate(cfg *config.Config, args []string) {
	var err error
	if len(args) > 0 && args[0] == "down" {
		err = rollbackMigration(cfg.DB.DSN())
	} else {
		err = applyMigrations(cfg.DB.DSN(), true)
	}
	if err != nil {
		logrus.WithError(err).Fatal("migrate")
	}
}

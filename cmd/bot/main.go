package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/Spok95/finance-bot/internal/bot"
	"github.com/Spok95/finance-bot/internal/config"
	"github.com/Spok95/finance-bot/internal/dialog"
	"github.com/Spok95/finance-bot/internal/domain/ledger"
	"github.com/Spok95/finance-bot/internal/domain/updates"
	"github.com/Spok95/finance-bot/internal/domain/users"
	"github.com/Spok95/finance-bot/internal/finance"
	"github.com/Spok95/finance-bot/internal/infra/db"
	httpx "github.com/Spok95/finance-bot/internal/infra/http"
	"github.com/Spok95/finance-bot/internal/infra/logger"
	"github.com/Spok95/finance-bot/internal/infra/metrics"
	"github.com/Spok95/finance-bot/internal/notify"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

type userStore interface {
	bot.UserStore
	notify.Subscribers
}

// stores репозитории выбранного storage.driver
type stores struct {
	ledger  finance.Store
	dialog  dialog.Store
	users   userStore
	updates bot.UpdateStore
	close   func()
}

func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func openStores(ctx context.Context, cfg config.Config, log *slog.Logger) (*stores, error) {
	if cfg.Storage.Driver == config.DriverBolt {
		bdb, err := db.OpenBolt(cfg.Bolt.Path)
		if err != nil {
			return nil, err
		}
		s := &stores{close: func() { _ = bdb.Close() }}
		if s.ledger, err = ledger.NewBoltRepo(bdb); err != nil {
			return nil, err
		}
		if s.dialog, err = dialog.NewBoltRepo(bdb); err != nil {
			return nil, err
		}
		if s.users, err = users.NewBoltRepo(bdb); err != nil {
			return nil, err
		}
		if s.updates, err = updates.NewBoltRepo(bdb); err != nil {
			return nil, err
		}
		log.Info("bolt opened", "path", cfg.Bolt.Path)
		return s, nil
	}

	if err := runMigrations(cfg.Postgres.DSN); err != nil {
		return nil, err
	}
	log.Info("migrations applied")

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}
	log.Info("db connected")
	return &stores{
		ledger:  ledger.NewRepo(pool),
		dialog:  dialog.NewRepo(pool),
		users:   users.NewRepo(pool),
		updates: updates.NewRepo(pool),
		close:   pool.Close,
	}, nil
}

func configPath() string {
	if p, ok := os.LookupEnv("APP_CONFIG"); ok {
		return p
	}
	return "config/example.yaml"
}

func main() {
	cfg, err := config.Load(configPath())
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)
	if err := tgbotapi.SetLogger(slog.NewLogLogger(log.Handler(), slog.LevelDebug)); err != nil {
		log.Warn("telegram logger", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Error("storage init failed", "driver", cfg.Storage.Driver, "err", err)
		return
	}
	defer st.close()

	var (
		m        = metrics.Nop()
		gatherer prometheus.Gatherer
	)
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(reg)
		gatherer = reg
	}

	api, err := tgbotapi.NewBotAPIWithClient(cfg.Telegram.Token, tgbotapi.APIEndpoint,
		&http.Client{Timeout: cfg.Telegram.RequestTimeout})
	if err != nil {
		log.Error("telegram init failed", "err", err)
		return
	}
	api.Debug = cfg.Telegram.Debug
	log.Info("authorized", "bot", api.Self.UserName)

	worker := notify.NewWorker(api, st.users, cfg.Telegram.AdminChatID, log, m, cfg.Notify.Buffer)
	worker.Start()

	machine := dialog.NewMachine(st.dialog)
	exec := finance.NewExecutor(st.ledger, finance.WithLocation(cfg.Location()))
	b := bot.New(api, log, st.users, st.updates, machine, exec, worker, m)

	srv := httpx.New(cfg.HTTP.Addr, gatherer)

	switch cfg.Telegram.Mode {
	case config.ModeWebhook:
		srv.Mount(cfg.Telegram.WebhookPath, bot.NewWebhookHandler(log, b))
		wh, err := tgbotapi.NewWebhook(cfg.WebhookEndpoint())
		if err != nil {
			log.Error("webhook config failed", "err", err)
			return
		}
		if _, err := api.Request(wh); err != nil {
			log.Error("set webhook failed", "err", err)
			return
		}
		log.Info("webhook registered", "url", cfg.WebhookEndpoint())
	default:
		if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			log.Warn("delete webhook failed", "err", err)
		}
		u := tgbotapi.NewUpdate(0)
		u.Timeout = cfg.Telegram.PollTimeout
		upds := api.GetUpdatesChan(u)
		go func() {
			if err := b.Run(ctx, upds); err != nil && ctx.Err() == nil {
				log.Error("polling stopped", "err", err)
			}
		}()
		log.Info("polling started")
	}

	go func() {
		if err := srv.Start(); err != nil {
			log.Error("http server error", "err", err)
			stop()
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	if cfg.Telegram.Mode == config.ModePolling {
		api.StopReceivingUpdates()
	}
	worker.Shutdown()
	log.Info("graceful shutdown complete")
}

// Package app assembles the expense bot: configuration, database, receipt
// storage, the conversation engine and the Telegram transport wiring.
package app

import (
	"context"
	"fmt"
	"time"

	tele "gopkg.in/telebot.v4"

	coredatabase "github.com/m3rciful/expensebot/core/database"
	"github.com/m3rciful/expensebot/core/logger"
	coretelegram "github.com/m3rciful/expensebot/core/telegram"
	"github.com/m3rciful/expensebot/internal/convo"
	"github.com/m3rciful/expensebot/internal/expense"
	"github.com/m3rciful/expensebot/internal/receipts"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// reapInterval is how often idle sessions are checked against the TTL.
const reapInterval = time.Minute

// App owns every long-lived component of the bot.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	store    *expense.Store
	receipts *receipts.Store
	sessions *convo.Manager
	engine   *convo.Engine

	// bot is assigned by the OnStart hook before polling begins and is only
	// read from handlers afterwards.
	bot *tele.Bot
}

// Bootstrap initializes logging, connects the database, applies migrations and
// wires the conversation engine.
func Bootstrap(cfg *Config) (*App, error) {
	if err := logger.InitLogger(&cfg.Core); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := coredatabase.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := coredatabase.RunMigrations(cfg.Database); err != nil {
		_ = db.Close()
		return nil, err
	}

	rstore, err := receipts.New(cfg.Core.Storage.Dir)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	chain := convo.NewExpenseChain()
	a := &App{
		cfg:      cfg,
		db:       db,
		store:    expense.NewStore(db),
		receipts: rstore,
		sessions: convo.NewManager(chain),
	}
	a.engine = convo.NewEngine(chain, a)
	return a, nil
}

// Record implements convo.Recorder by projecting the finished session onto an
// expense row and appending it.
func (a *App) Record(ctx context.Context, s *convo.Session) error {
	return a.store.Append(ctx, expense.FromValues(s.Owner, s.CorrelationID, s.Values()))
}

// TelegramRunOptions builds the full transport wiring for coretelegram.RunTelegram.
func (a *App) TelegramRunOptions() coretelegram.RunOptions {
	reg := a.registry()
	core := &a.cfg.Core

	routes := coretelegram.CommandRoutes(reg, core.Telegram.AdminID, nil)
	routes = append(routes,
		coretelegram.Route{Endpoint: tele.OnText, Handler: a.onText},
		coretelegram.Route{Endpoint: tele.OnPhoto, Handler: a.onPhoto},
	)

	return coretelegram.RunOptions{
		Config:      core,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(core, nil),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.bot = rt.Bot
			if ttl := core.Session.TTL; ttl > 0 {
				go a.reapLoop(ctx, ttl)
			}
			return nil
		},
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			return a.db.Close()
		},
	}
}

// reapLoop periodically evicts sessions idle longer than ttl.
func (a *App) reapLoop(ctx context.Context, ttl time.Duration) {
	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := a.sessions.Reap(now, ttl); n > 0 {
				logger.Info(ctx, "app", "sessions.reaped",
					slog.Int("count", n),
					slog.Duration("ttl", ttl),
				)
			}
		}
	}
}

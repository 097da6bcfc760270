// Package bot implements the core bot lifecycle: it runs the Telegram
// listener, the task scheduler, and the engine lock watchdog until shutdown.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/mvisser/snagbot/internal/config"
	"github.com/mvisser/snagbot/internal/database"
	"github.com/mvisser/snagbot/internal/stats"
)

// lockProbeInterval is how often the watchdog samples the engine's
// in-flight operation marker.
const lockProbeInterval = 30 * time.Second

// Bot represents the main application and manages its components' lifecycle.
type Bot struct {
	logger    *slog.Logger
	cfg       *config.Config
	db        *sqlx.DB
	store     database.Store
	engine    *stats.Engine
	tgBot     *tgbot.Bot
	scheduler *Scheduler
}

// NewBot creates the bot with all required dependencies.
func NewBot(
	logger *slog.Logger,
	cfg *config.Config,
	db *sqlx.DB,
	store database.Store,
	engine *stats.Engine,
	tgBot *tgbot.Bot,
	scheduler *Scheduler,
) *Bot {
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		cfg:       cfg,
		db:        db,
		store:     store,
		engine:    engine,
		tgBot:     tgBot,
		scheduler: scheduler,
	}
}

// Run starts all components and blocks until the context is cancelled or a
// component fails.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting Telegram bot listener...")
		b.tgBot.Start(gCtx)
		b.logger.Info("Telegram bot listener stopped.")

		if gCtx.Err() == nil {
			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		b.logger.Info("Starting scheduler...")
		if err := b.scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler...")
		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		b.watchEngineLock(gCtx)
		return nil
	})

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}

// watchEngineLock periodically samples the engine's in-flight operation
// marker and warns when the same operation is observed holding the lock
// across consecutive probes, which usually means a stalled store call.
func (b *Bot) watchEngineLock(ctx context.Context) {
	ticker := time.NewTicker(lockProbeInterval)
	defer ticker.Stop()

	var lastOp string
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			op := b.engine.CurrentOperation()
			if op != "none" && op == lastOp {
				b.logger.Warn("Engine lock held across probes", "operation", op, "probe_interval", lockProbeInterval)
			}
			lastOp = op
		}
	}
}

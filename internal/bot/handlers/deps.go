package handlers

import (
	"log/slog"

	"github.com/mvisser/snagbot/internal/config"
	"github.com/mvisser/snagbot/internal/stats"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger *slog.Logger
	Config *config.Config
	Engine *stats.Engine
}

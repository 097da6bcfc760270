// Package tasks implements scheduled background tasks: database
// maintenance and the periodic stats digest.
package tasks

import (
	"log/slog"

	tgbot "github.com/go-telegram/bot"

	"github.com/mvisser/snagbot/internal/config"
	"github.com/mvisser/snagbot/internal/database"
	"github.com/mvisser/snagbot/internal/stats"
)

// TaskDeps contains the dependencies available to scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Engine *stats.Engine
	Bot    *tgbot.Bot
	Config *config.Config
}

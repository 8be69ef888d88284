package handler

import (
	"context"
	"sync/atomic"

	"github.com/go-telegram/bot"

	"github.com/set-night/geminichat/internal/domain"
	"github.com/set-night/geminichat/internal/service"
)

// ModelLookup resolves model metadata for /model.
type ModelLookup interface {
	Model() string
	GetModel(ctx context.Context, modelID string) (*domain.AIModel, error)
}

// Handler serves the owner chat on top of a single ChatSession.
type Handler struct {
	bot     *bot.Bot
	session *service.ChatSession
	models  ModelLookup

	// set while a text update is waiting on the model
	inFlight atomic.Bool
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot     *bot.Bot
	Session *service.ChatSession
	Models  ModelLookup
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:     deps.Bot,
		session: deps.Session,
		models:  deps.Models,
	}
}

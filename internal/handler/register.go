package handler

import "github.com/go-telegram/bot"

// Register registers command handlers on the bot instance. Plain text is
// not registered here; it reaches HandleDefault through bot.WithDefaultHandler.
func (h *Handler) Register() {
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/model", bot.MatchTypePrefix, h.handleModel)
}

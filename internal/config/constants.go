package config

import "time"

const (
	// AI request timeout, applied by the HTTP client only
	RequestTimeout = 90 * time.Second

	// Model list cache duration
	ModelCacheDuration = 1 * time.Hour

	// Page size for the models listing
	ModelsPageSize = 50

	// Telegram limits
	MaxTelegramMessageLen = 4096

	// Typing indicator refresh
	TypingInterval = 4 * time.Second

	// Telegram send timeout for replies outside the update context
	TelegramSendTimeout = 10 * time.Second

	// Update workers; more than one so a message sent while a reply is
	// pending gets the busy answer instead of queueing behind it
	TelegramWorkers = 4
)

// Fallback model turns. They must stay distinct.
const (
	MalformedResponseText = "Sorry, I couldn't make sense of the response. Please try again."
	TransportFailureText  = "Sorry, something went wrong while reaching the model. Please try again later."
)

// Telegram front end texts.
const (
	GreetingText = "Hi! Send me a message and I'll pass it to Gemini."
	BusyText     = "⏳ Please wait for the answer to your previous message."
	PanicText    = "❌ Something went wrong while handling your message."
)

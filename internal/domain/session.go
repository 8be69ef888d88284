package domain

import (
	"time"

	"github.com/google/uuid"
)

type Sender string

const (
	SenderUser  Sender = "user"
	SenderModel Sender = "model"
)

// Message is a single conversation turn. Messages are never mutated after creation.
type Message struct {
	ID        uuid.UUID
	Sender    Sender
	Text      string
	CreatedAt time.Time
}

func NewMessage(sender Sender, text string) Message {
	return Message{
		ID:        uuid.New(),
		Sender:    sender,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

// Transcript is the ordered conversation, oldest first.
type Transcript []Message

// SessionState is a read-only snapshot handed to renderers.
type SessionState struct {
	Transcript   Transcript
	Busy         bool
	PendingInput string
}

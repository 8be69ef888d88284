package service

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/set-night/geminichat/internal/config"
	"github.com/set-night/geminichat/internal/domain"
)

// Completer is the remote completion call a ChatSession depends on.
type Completer interface {
	GenerateContent(ctx context.Context, contents []Content) (*GenerateContentResponse, error)
}

// ChatSession owns one conversation. Front ends read it through State and
// mutate it only through SetInput and Send/SendAsync.
//
// Busy is reported, not enforced: callers must not start a send while
// Busy is true.
type ChatSession struct {
	completer Completer

	mu           sync.RWMutex
	transcript   domain.Transcript
	busy         bool
	pendingInput string
}

func NewChatSession(completer Completer) *ChatSession {
	return &ChatSession{completer: completer}
}

// SetInput replaces the text being composed.
func (s *ChatSession) SetInput(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingInput = text
}

func (s *ChatSession) PendingInput() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pendingInput
}

func (s *ChatSession) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.busy
}

// Transcript returns a copy of the conversation so far.
func (s *ChatSession) Transcript() domain.Transcript {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyTranscript()
}

func (s *ChatSession) State() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.SessionState{
		Transcript:   s.copyTranscript(),
		Busy:         s.busy,
		PendingInput: s.pendingInput,
	}
}

// CanSend reports whether a front end should allow submitting right now.
func (s *ChatSession) CanSend() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.busy && strings.TrimSpace(s.pendingInput) != ""
}

// Send appends the user turn, asks the model, and appends its reply or a
// fallback turn. Blank text is ignored. Send never fails: every non-blank
// call grows the transcript by exactly two messages and leaves Busy false.
func (s *ChatSession) Send(ctx context.Context, text string) {
	contents, ok := s.begin(text)
	if !ok {
		return
	}
	s.resolve(ctx, contents)
}

// SendAsync does the user-turn append before returning, then resolves the
// model call in the background. The returned channel yields the appended
// model turn and is closed. It is nil when text is blank.
func (s *ChatSession) SendAsync(ctx context.Context, text string) <-chan domain.Message {
	contents, ok := s.begin(text)
	if !ok {
		return nil
	}
	ch := make(chan domain.Message, 1)
	go func() {
		defer close(ch)
		ch <- s.resolve(ctx, contents)
	}()
	return ch
}

func (s *ChatSession) begin(text string) ([]Content, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.transcript = append(s.transcript, domain.NewMessage(domain.SenderUser, text))
	s.pendingInput = ""
	s.busy = true

	return ToContents(s.transcript), true
}

func (s *ChatSession) resolve(ctx context.Context, contents []Content) (reply domain.Message) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic recovered in model call",
				"panic", r,
				"stack", string(debug.Stack()),
			)
			reply = s.finish(config.TransportFailureText)
		}
	}()

	resp, err := s.completer.GenerateContent(ctx, contents)
	if err == nil {
		var text string
		if text, err = ExtractText(resp); err == nil {
			return s.finish(text)
		}
	}

	if !errors.Is(err, domain.ErrMalformedResponse) {
		slog.Error("model call failed", "error", err, "turns", len(contents))
		return s.finish(config.TransportFailureText)
	}
	attrs := []any{"error", err}
	if resp != nil && resp.Error != nil {
		attrs = append(attrs, "api_message", resp.Error.Message)
	}
	slog.Warn("unexpected model response shape", attrs...)
	return s.finish(config.MalformedResponseText)
}

func (s *ChatSession) finish(text string) domain.Message {
	msg := domain.NewMessage(domain.SenderModel, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, msg)
	s.busy = false
	return msg
}

func (s *ChatSession) copyTranscript() domain.Transcript {
	out := make(domain.Transcript, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// ToContents maps a transcript to request contents, one text part per turn.
func ToContents(transcript domain.Transcript) []Content {
	contents := make([]Content, 0, len(transcript))
	for _, m := range transcript {
		role := RoleUser
		if m.Sender == domain.SenderModel {
			role = RoleModel
		}
		contents = append(contents, Content{
			Role:  role,
			Parts: []Part{{Text: m.Text}},
		})
	}
	return contents
}

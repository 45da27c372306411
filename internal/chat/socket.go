// Package chat serves the costume support assistant over a websocket.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"costumedesk/internal/platform/metrics"
	"costumedesk/pkg/requestcontext"
	"costumedesk/pkg/validation"
)

const (
	Greeting = "Hello from your Halloween Costume Creator, how can we help you?"
	Apology  = "Sorry, I am unable to process your request at the moment. It's not something I'm allowed to do."
)

// Assistant answers one message within a chat session.
type Assistant interface {
	Chat(ctx context.Context, sessionID, message string) (string, error)
}

// SessionEnder is implemented by assistants that keep per-session state.
type SessionEnder interface {
	EndSession(ctx context.Context, sessionID string) error
}

type Socket struct {
	assistant      Assistant
	logger         *slog.Logger
	metrics        *metrics.Metrics
	replyTimeout   time.Duration
	originPatterns []string

	sessions sync.WaitGroup
}

type Option func(*Socket)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Socket) { s.metrics = m }
}

// WithReplyTimeout bounds each assistant reply.
func WithReplyTimeout(d time.Duration) Option {
	return func(s *Socket) { s.replyTimeout = d }
}

// WithOriginPatterns allows cross-origin upgrades from the given host patterns.
func WithOriginPatterns(patterns ...string) Option {
	return func(s *Socket) { s.originPatterns = patterns }
}

func New(assistant Assistant, logger *slog.Logger, opts ...Option) *Socket {
	s := &Socket{assistant: assistant, logger: logger, replyTimeout: 60 * time.Second}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Socket) Register(r chi.Router) {
	r.Get("/chat", s.HandleChat)
}

// HandleChat upgrades the connection, greets the user and answers every text
// message. One connection is one session.
func (s *Socket) HandleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.originPatterns})
	if err != nil {
		s.logger.WarnContext(r.Context(), "websocket upgrade failed",
			"error", err,
			"request_id", requestcontext.RequestID(r.Context()),
		)
		return
	}
	defer conn.CloseNow() //nolint:errcheck // already closing

	s.sessions.Add(1)
	defer s.sessions.Done()

	// A chat message is at most MaxChatMessageLength runes of up to 4 bytes.
	conn.SetReadLimit(int64(validation.MaxChatMessageLength) * 4)

	sessionID := uuid.NewString()
	ctx := requestcontext.WithSessionID(r.Context(), sessionID)
	if s.metrics != nil {
		s.metrics.ActiveSockets.Inc()
		defer s.metrics.ActiveSockets.Dec()
	}
	defer s.endSession(sessionID)

	s.logger.InfoContext(ctx, "chat session opened", "session_id", sessionID)
	if err := conn.Write(ctx, websocket.MessageText, []byte(Greeting)); err != nil {
		return
	}

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			s.logClose(ctx, sessionID, err)
			return
		}
		if typ != websocket.MessageText {
			conn.Close(websocket.StatusUnsupportedData, "text messages only") //nolint:errcheck // closing
			return
		}
		if err := conn.Write(ctx, websocket.MessageText, []byte(s.reply(ctx, sessionID, string(data)))); err != nil {
			s.logClose(ctx, sessionID, err)
			return
		}
	}
}

// Wait blocks until every open session has ended or ctx is done. The server
// calls it after Shutdown, once no new upgrades can arrive.
func (s *Socket) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.sessions.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Socket) reply(ctx context.Context, sessionID, message string) string {
	ctx, cancel := context.WithTimeout(ctx, s.replyTimeout)
	defer cancel()

	answer, err := s.assistant.Chat(ctx, sessionID, message)
	if err != nil {
		s.logger.ErrorContext(ctx, "error calling the assistant",
			"error", err,
			"session_id", sessionID,
		)
		return Apology
	}
	return answer
}

func (s *Socket) endSession(sessionID string) {
	ender, ok := s.assistant.(SessionEnder)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ender.EndSession(ctx, sessionID); err != nil {
		s.logger.Warn("failed to end chat session", "error", err, "session_id", sessionID)
	}
}

func (s *Socket) logClose(ctx context.Context, sessionID string, err error) {
	status := websocket.CloseStatus(err)
	if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
		s.logger.InfoContext(ctx, "chat session closed", "session_id", sessionID)
		return
	}
	s.logger.WarnContext(ctx, "chat session ended with error", "error", err, "session_id", sessionID)
}

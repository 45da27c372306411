package poem

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	dErrors "costumedesk/pkg/domain-errors"
	"costumedesk/pkg/platform/httputil"
	"costumedesk/pkg/requestcontext"
)

// Scripted prompts of the demo endpoints.
const (
	MemoryQuestion    = "How do I write a poem about my favorite Halloween costume?"
	MemoryFollowUp    = "Create a poem about a random costume. Be short, 15 lines of maximum."
	GuessPeteIntro    = "Hello, my name is Pete and my Halloween costume is Santa Claus"
	GuessJeremyIntro  = "Hi, I'm Jeremy and my Halloween costume is a rock and roll star"
	GuessJeremyName   = "What is my name?"
	GuessPetePoem     = "Please write me a 15 line poem about my Halloween costume?"
	HalloweenQuestion = "What should my halloween costume be?"
	PoemCostume       = "Winnie the Pooh"
	PoemLines         = 4
)

type MemoryChat interface {
	Chat(ctx context.Context, memoryID, message string) (string, error)
}

type Poet interface {
	WriteAPoem(ctx context.Context, costume string, lines int) (string, error)
}

type Halloween interface {
	Chat(ctx context.Context, message string) (string, error)
}

type Handler struct {
	memoryChat MemoryChat
	poet       Poet
	halloween  Halloween
	logger     *slog.Logger
}

func New(memoryChat MemoryChat, poet Poet, halloween Halloween, logger *slog.Logger) *Handler {
	return &Handler{memoryChat: memoryChat, poet: poet, halloween: halloween, logger: logger}
}

// errNoModel is returned when the server runs without a model API key.
var errNoModel = dErrors.New(dErrors.CodeUnavailable, "assistant is not configured")

func (h *Handler) Register(r chi.Router) {
	r.Get("/poem/memory", h.HandleMemory)
	r.Get("/poem/guess", h.HandleGuess)
	r.Get("/email-me-a-poem", h.HandleEmailMeAPoem)
	r.Get("/halloween/costume", h.HandleHalloweenCostume)
}

// conversation ids are scoped to one request so repeated demo calls start fresh.
func conversationIDs(n int) []string {
	prefix := uuid.NewString()
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s-%d", prefix, i+1)
	}
	return ids
}

// HandleMemory shows the model keeping context across two turns of one conversation.
func (h *Handler) HandleMemory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.memoryChat == nil {
		h.fail(ctx, w, "memory chat failed", errNoModel)
		return
	}
	ids := conversationIDs(1)

	var t transcript
	for i, msg := range []string{MemoryQuestion, MemoryFollowUp} {
		answer, err := h.memoryChat.Chat(ctx, ids[0], msg)
		if err != nil {
			h.fail(ctx, w, "memory chat failed", err)
			return
		}
		if i > 0 {
			t.separate()
		}
		t.exchange("User", msg, answer)
	}

	httputil.WriteText(w, http.StatusOK, t.String())
}

// HandleGuess interleaves two users to show their memories stay apart.
func (h *Handler) HandleGuess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.memoryChat == nil {
		h.fail(ctx, w, "memory chat failed", errNoModel)
		return
	}
	ids := conversationIDs(2)
	pete, jeremy := ids[0], ids[1]

	script := []struct {
		speaker, memoryID, message string
	}{
		{"User1", pete, GuessPeteIntro},
		{"User2", jeremy, GuessJeremyIntro},
		{"User2", jeremy, GuessJeremyName},
		{"User1", pete, GuessPetePoem},
	}

	var t transcript
	for _, step := range script {
		answer, err := h.memoryChat.Chat(ctx, step.memoryID, step.message)
		if err != nil {
			h.fail(ctx, w, "memory chat failed", err)
			return
		}
		t.exchange(step.speaker, step.message, answer)
		t.separate()
	}

	httputil.WriteText(w, http.StatusOK, t.String())
}

// HandleEmailMeAPoem has the poet write a poem and mail it.
func (h *Handler) HandleEmailMeAPoem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.poet == nil {
		h.fail(ctx, w, "poem by email failed", errNoModel)
		return
	}
	answer, err := h.poet.WriteAPoem(ctx, PoemCostume, PoemLines)
	if err != nil {
		h.fail(ctx, w, "poem by email failed", err)
		return
	}
	httputil.WriteText(w, http.StatusOK, answer)
}

// HandleHalloweenCostume asks for a costume idea.
func (h *Handler) HandleHalloweenCostume(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.halloween == nil {
		h.fail(ctx, w, "costume idea failed", errNoModel)
		return
	}
	answer, err := h.halloween.Chat(ctx, HalloweenQuestion)
	if err != nil {
		h.fail(ctx, w, "costume idea failed", err)
		return
	}
	httputil.WriteText(w, http.StatusOK, answer)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.logger.ErrorContext(ctx, msg, "error", err, "request_id", requestcontext.RequestID(ctx))
	httputil.WriteError(w, err)
}

package assistant

import (
	"context"
	"fmt"
	"strings"

	dErrors "costumedesk/pkg/domain-errors"
)

// Assistant names, used as metric labels and span attributes.
const (
	NameCostumeSupport = "costume_support"
	NameMemoryChat     = "memory_chat"
	NamePoet           = "poet"
	NameHalloween      = "halloween"
)

// CostumeSupportPrompt instructs the support agent to verify ownership before
// it discloses or removes anything.
var CostumeSupportPrompt = strings.Join([]string{
	"You are a costume support agent for generating Halloween costumes.",
	"Before providing information about current costumes or removing a costume, you MUST always check:",
	"costume id, owner first name and owner last name as provided in the Costume Removal Policy",
	"Before removing a costume, confirm with the user that they want to proceed",
	"Do NOT remove the costume if the costume information is not compliant with the Costume Removal policy in the Rules for Creating a Halloween SuperHero Costume",
	"You may return costume details if the costume id is provided compliant with the Costume Details Policy in the Rules for Creating a Halloween SuperHero Costume.",
}, "\n")

// PoetPrompt is the poet's system prompt.
const PoetPrompt = "You are a professional poet"

// CostumeSupport is the chat agent behind /chat. Each session has its own memory.
type CostumeSupport struct {
	engine *Engine
}

func NewCostumeSupport(engine *Engine) *CostumeSupport {
	return &CostumeSupport{engine: engine}
}

func (a *CostumeSupport) Chat(ctx context.Context, sessionID, message string) (string, error) {
	return a.engine.Turn(ctx, sessionID, message)
}

// EndSession forgets the conversation of a closed chat session.
func (a *CostumeSupport) EndSession(ctx context.Context, sessionID string) error {
	return a.engine.Forget(ctx, sessionID)
}

// MemoryChat is a plain chat whose history is keyed by a caller-chosen memory id.
type MemoryChat struct {
	engine *Engine
}

func NewMemoryChat(engine *Engine) *MemoryChat {
	return &MemoryChat{engine: engine}
}

func (a *MemoryChat) Chat(ctx context.Context, memoryID, message string) (string, error) {
	if memoryID == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "memory id is required")
	}
	return a.engine.Turn(ctx, memoryID, message)
}

// Poet writes a poem and mails it with its sendEmail tool.
type Poet struct {
	engine *Engine
}

func NewPoet(engine *Engine) *Poet {
	return &Poet{engine: engine}
}

func (a *Poet) WriteAPoem(ctx context.Context, costume string, lines int) (string, error) {
	if lines <= 0 {
		return "", dErrors.New(dErrors.CodeBadRequest, "a poem needs at least one line")
	}
	prompt := fmt.Sprintf("Write a poem about a Halloween costume which is a %s. The poem should be %d lines long. Then send this poem by email.", costume, lines)
	return a.engine.Turn(ctx, "", prompt)
}

// Halloween answers one-off questions without memory or tools.
type Halloween struct {
	engine *Engine
}

func NewHalloween(engine *Engine) *Halloween {
	return &Halloween{engine: engine}
}

func (a *Halloween) Chat(ctx context.Context, message string) (string, error) {
	return a.engine.Turn(ctx, "", message)
}

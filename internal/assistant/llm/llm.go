// Package llm defines the provider-neutral conversation types the assistants
// exchange with a chat model.
package llm

import (
	"context"

	"costumedesk/internal/assistant/toolkit"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one conversation turn. A model message carries either Text or
// ToolCalls; a user message carries either Text or ToolResults.
type Message struct {
	Role        Role         `json:"role"`
	Text        string       `json:"text,omitempty"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
}

type ToolCall struct {
	ID   string         `json:"id,omitempty"`
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
	// Signature is the provider's opaque thought signature; it must be sent
	// back unchanged when the call is replayed.
	Signature []byte `json:"signature,omitempty"`
}

type ToolResult struct {
	ID       string         `json:"id,omitempty"`
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

func UserText(text string) Message  { return Message{Role: RoleUser, Text: text} }
func ModelText(text string) Message { return Message{Role: RoleModel, Text: text} }

type Request struct {
	SystemPrompt string
	Messages     []Message
	Tools        []toolkit.Definition
}

// Response is either a final answer (Text) or a set of tool calls to run.
type Response struct {
	Text      string
	ToolCalls []ToolCall
}

//go:generate mockgen -source=llm.go -destination=mocks/mocks.go -package=mocks Model

// Model generates the next turn of a conversation.
type Model interface {
	Name() string
	Generate(ctx context.Context, req Request) (*Response, error)
}

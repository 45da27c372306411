// Package toolkit describes functions an assistant may ask the model to call.
package toolkit

import (
	"context"
	"fmt"
	"sort"

	dErrors "costumedesk/pkg/domain-errors"
)

// Parameter is a string argument of a tool. Tools in this service only take
// strings; anything else the model sends is rejected.
type Parameter struct {
	Name        string
	Description string
}

// Definition is what the model sees of a tool.
type Definition struct {
	Name        string
	Description string
	Parameters  []Parameter
}

// Result is serialised back to the model as the function response.
type Result map[string]any

// Tool is a callable function exposed to the model.
type Tool interface {
	Definition() Definition
	Call(ctx context.Context, args Args) (Result, error)
}

// Args are the raw arguments decoded from a model function call.
type Args map[string]any

// String returns the named argument when it is a JSON string. Missing, null,
// numeric and boolean values are an invalid-input error; nothing is coerced.
func (a Args) String(name string) (string, error) {
	raw, ok := a[name]
	if !ok || raw == nil {
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("argument %s is required", name))
	}
	s, ok := raw.(string)
	if !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("argument %s must be a string, got %T", name, raw))
	}
	return s, nil
}

// Registry indexes tools by name.
type Registry struct {
	tools map[string]Tool
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		r.tools[t.Definition().Name] = t
	}
	return r
}

func (r *Registry) Lookup(name string) (Tool, bool) {
	if r == nil {
		return nil, false
	}
	t, ok := r.tools[name]
	return t, ok
}

// Definitions returns all tool definitions sorted by name.
func (r *Registry) Definitions() []Definition {
	if r == nil {
		return nil
	}
	defs := make([]Definition, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, t.Definition())
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.tools)
}

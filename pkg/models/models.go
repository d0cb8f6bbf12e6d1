// Package models maps stack model identifiers (e.g. "Llama3.2-3B") to the
// identifiers a serving provider expects, and validates identifiers before
// a request is sent.
package models

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
)

var (
	// ErrUnknownModel is returned for an identifier that names no known model.
	ErrUnknownModel = errors.New("unknown model")

	// ErrUnsupportedModel is returned for a known model that has no provider
	// mapping in the registry.
	ErrUnsupportedModel = errors.New("unsupported model")
)

// DefaultModel is the model used by the CLI when none is given.
const DefaultModel = "Llama3.2-3B"

// Known lists the stack model identifiers the registry recognizes.
var Known = []string{
	"Llama3.1-8B",
	"Llama3.1-8B-Instruct",
	"Llama3.1-70B-Instruct",
	"Llama3.2-1B",
	"Llama3.2-3B",
	"Llama3.2-1B-Instruct",
	"Llama3.2-3B-Instruct",
	"Llama-Guard-3-1B",
	"Llama-Guard-3-8B",
}

// OllamaModels maps stack identifiers to Ollama model tags.
var OllamaModels = map[string]string{
	"Llama3.1-8B-Instruct":  "llama3.1:8b-instruct-fp16",
	"Llama3.1-70B-Instruct": "llama3.1:70b-instruct-fp16",
	"Llama3.2-1B":           "llama3.2:1b",
	"Llama3.2-3B":           "llama3.2:3b",
	"Llama3.2-1B-Instruct":  "llama3.2:1b-instruct-fp16",
	"Llama3.2-3B-Instruct":  "llama3.2:3b-instruct-fp16",
	"Llama-Guard-3-1B":      "llama-guard3:1b",
	"Llama-Guard-3-8B":      "llama-guard3:8b",
}

// Model is a registry entry.
type Model struct {
	// ID is the stack identifier callers use.
	ID string

	// ProviderID is the identifier sent to the serving provider.
	ProviderID string
}

// Registry holds the provider mapping. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	providerOf map[string]string
	registered map[string]bool
}

// New creates a registry from a stack id to provider id map. The map is
// copied.
func New(providerModels map[string]string) *Registry {
	r := &Registry{
		providerOf: make(map[string]string, len(providerModels)),
		registered: map[string]bool{},
	}
	for id, providerID := range providerModels {
		r.providerOf[id] = providerID
	}
	return r
}

// Default returns a registry with the Ollama mapping.
func Default() *Registry {
	return New(OllamaModels)
}

// IsKnown reports whether id is a recognized stack model identifier.
func IsKnown(id string) bool {
	return slices.Contains(Known, id)
}

// MapToProvider returns the provider identifier for id.
func (r *Registry) MapToProvider(id string) (string, error) {
	if !IsKnown(id) {
		return "", fmt.Errorf("%w: %q", ErrUnknownModel, id)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	providerID, ok := r.providerOf[id]
	if !ok {
		return "", fmt.Errorf("%w: %q not found in provider map (supported: %v)", ErrUnsupportedModel, id, r.idsLocked())
	}
	return providerID, nil
}

// Validate reports whether id can be used with this registry.
func (r *Registry) Validate(id string) error {
	_, err := r.MapToProvider(id)
	return err
}

// Register marks a model as served. Only models present in the provider map
// can be registered, and a non-empty ProviderID must match the mapping.
func (r *Registry) Register(m Model) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	providerID, ok := r.providerOf[m.ID]
	if !ok {
		return fmt.Errorf("%w: %q (supported: %v)", ErrUnsupportedModel, m.ID, r.idsLocked())
	}
	if m.ProviderID != "" && m.ProviderID != providerID {
		return fmt.Errorf("model %q maps to %q, not %q", m.ID, providerID, m.ProviderID)
	}

	r.registered[m.ID] = true
	return nil
}

// Registered reports whether id, either a stack identifier or the provider
// identifier it maps to, belongs to a registered model.
func (r *Registry) Registered(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.registered[id] {
		return true
	}
	for stackID := range r.registered {
		if r.providerOf[stackID] == id {
			return true
		}
	}
	return false
}

// RegisterAll registers every mapped model.
func (r *Registry) RegisterAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.providerOf {
		r.registered[id] = true
	}
}

// List returns every mapped model sorted by ID.
func (r *Registry) List() []Model {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Model, 0, len(r.providerOf))
	for id, providerID := range r.providerOf {
		out = append(out, Model{ID: id, ProviderID: providerID})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *Registry) idsLocked() []string {
	ids := make([]string, 0, len(r.providerOf))
	for id := range r.providerOf {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/papercomputeco/marcus/pkg/llm"
)

const (
	conversationFile = "conversation.json"
)

// Conversation is the persisted state of a multi-turn chat: the model and
// every message exchanged so far, oldest first.
type Conversation struct {
	Model    string        `json:"model"`
	Messages []llm.Message `json:"messages"`
}

// resolve returns the directory the conversation lives in. Without an
// override or an existing .marcus/ directory, ~/.marcus is created.
func (m *Manager) resolve(overrideDir string) (string, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}
	if dir != "" {
		return dir, nil
	}
	return m.HomeDir()
}

// LoadConversation loads the saved conversation.
// Returns nil, nil if none was saved.
func (m *Manager) LoadConversation(overrideDir string) (*Conversation, error) {
	dir, err := m.resolve(overrideDir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, conversationFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading conversation: %w", err)
	}

	conv := &Conversation{}
	if err := json.Unmarshal(data, conv); err != nil {
		return nil, fmt.Errorf("parsing conversation: %w", err)
	}

	return conv, nil
}

// SaveConversation persists conv, replacing any saved conversation.
func (m *Manager) SaveConversation(conv *Conversation, overrideDir string) error {
	if conv == nil {
		return errors.New("cannot save nil conversation")
	}

	dir, err := m.resolve(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling conversation: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, conversationFile), data, 0o600); err != nil {
		return fmt.Errorf("writing conversation: %w", err)
	}

	return nil
}

// ClearConversation removes the saved conversation so the next chat starts
// fresh. Returns nil if there was nothing to clear.
func (m *Manager) ClearConversation(overrideDir string) error {
	dir, err := m.resolve(overrideDir)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(dir, conversationFile)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing conversation: %w", err)
	}

	return nil
}

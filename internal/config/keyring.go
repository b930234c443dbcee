package config

import (
	"fmt"
	"log/slog"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name in the OS keychain
	KeyringService = "gitday"

	// KeyringOpenAIItem is the key for the OpenAI API key
	KeyringOpenAIItem = "openai-api-key"

	// KeyringGeminiItem is the key for the Gemini API key
	KeyringGeminiItem = "gemini-api-key"
)

// KeyringManager handles secure credential storage in the OS keychain
type KeyringManager struct {
	logger *slog.Logger
}

// NewKeyringManager creates a new keyring manager
func NewKeyringManager() *KeyringManager {
	return &KeyringManager{
		logger: slog.Default().With("component", "keyring"),
	}
}

// SaveKey stores an API key securely in the OS keychain.
// macOS Keychain, Windows Credential Manager, Linux Secret Service.
func (km *KeyringManager) SaveKey(item, apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("api key cannot be empty")
	}
	if err := keyring.Set(KeyringService, item, apiKey); err != nil {
		km.logger.Error("failed to save key to keychain", "item", item, "error", err)
		return fmt.Errorf("failed to save to OS keychain: %w", err)
	}
	km.logger.Info("api key saved to keychain", "service", KeyringService, "item", item)
	return nil
}

// GetKey retrieves an API key from the OS keychain. A missing key is
// not an error, just an empty result.
func (km *KeyringManager) GetKey(item string) (string, error) {
	apiKey, err := keyring.Get(KeyringService, item)
	if err == keyring.ErrNotFound {
		return "", nil
	}
	if err != nil {
		km.logger.Error("failed to read key from keychain", "item", item, "error", err)
		return "", fmt.Errorf("failed to read from OS keychain: %w", err)
	}
	return apiKey, nil
}

// DeleteKey removes an API key from the OS keychain
func (km *KeyringManager) DeleteKey(item string) error {
	err := keyring.Delete(KeyringService, item)
	if err == keyring.ErrNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete from OS keychain: %w", err)
	}
	km.logger.Info("api key deleted from keychain", "item", item)
	return nil
}

// IsAvailable checks if the OS keychain is usable.
// Returns false on headless systems (CI) where no keychain backend exists.
func (km *KeyringManager) IsAvailable() bool {
	_, err := keyring.Get(KeyringService, "availability-check")
	if err == keyring.ErrNotFound {
		return true
	}
	if err != nil {
		km.logger.Debug("keychain not available", "error", err)
		return false
	}
	return true
}

// MaskAPIKey masks an API key for display, keeping just enough to
// recognize it: "sk-proj...abc1"
func MaskAPIKey(apiKey string) string {
	if apiKey == "" {
		return "(not set)"
	}
	if len(apiKey) < 12 {
		return "***"
	}
	return fmt.Sprintf("%s...%s", apiKey[:7], apiKey[len(apiKey)-4:])
}

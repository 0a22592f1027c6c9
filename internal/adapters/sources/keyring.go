package sources

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// keyringService is the service name used for keyring entries.
const keyringService = "nodeops"

// ErrSecretNotFound is returned when a source has no stored secret.
var ErrSecretNotFound = errors.New("secret not found")

// SecretStore provides source secrets by source name.
type SecretStore interface {
	Secret(ctx context.Context, name string) (string, error)
}

// KeyringStore keeps source secrets in the OS keyring: macOS Keychain,
// Secret Service on Linux, Credential Manager on Windows.
type KeyringStore struct {
	service string
}

// NewKeyringStore creates a KeyringStore.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{service: keyringService}
}

// Secret returns the secret stored for the source called name.
func (k *KeyringStore) Secret(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	value, err := keyring.Get(k.service, name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("%w: package source %q has no keyring entry", ErrSecretNotFound, name)
		}
		return "", fmt.Errorf("keyring error: %w", err)
	}
	return value, nil
}

// Store saves secret for the source called name.
func (k *KeyringStore) Store(name, secret string) error {
	if err := keyring.Set(k.service, name, secret); err != nil {
		return fmt.Errorf("keyring error: %w", err)
	}
	return nil
}

// Delete removes the secret for the source called name.
func (k *KeyringStore) Delete(name string) error {
	if err := keyring.Delete(k.service, name); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("%w: package source %q has no keyring entry", ErrSecretNotFound, name)
		}
		return fmt.Errorf("keyring error: %w", err)
	}
	return nil
}

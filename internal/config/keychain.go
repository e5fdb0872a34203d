package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
)

const (
	keychainService     = "dietfit"
	sessionTokenAccount = "session_token"
	serverTokenAccount  = "server_token"
)

// ErrSecretNotFound is returned by Keychain.Get for a missing entry.
var ErrSecretNotFound = errors.New("secret not found")

// Keychain stores secrets outside the config backend.
type Keychain interface {
	Get(service, account string) (string, error)
	Set(service, account, value string) error
	Delete(service, account string) error
}

// NewKeychain returns the platform secret store: the login keychain on
// macOS, a 0600 secrets.json under $XDG_DATA_HOME/dietfit elsewhere.
func NewKeychain() Keychain {
	return platformKeychain{}
}

type platformKeychain struct{}

func (platformKeychain) Get(service, account string) (string, error) {
	return keychainGet(service, account)
}

func (platformKeychain) Set(service, account, value string) error {
	return keychainSet(service, account, value)
}

func (platformKeychain) Delete(service, account string) error {
	return keychainDelete(service, account)
}

// GetAPIToken returns the backend session token. DIETFIT_API_TOKEN takes
// precedence over the keychain. A missing token is "" with a nil error.
func GetAPIToken(kc Keychain) (string, error) {
	if tok := os.Getenv(envPrefix + "API_TOKEN"); tok != "" {
		return tok, nil
	}
	tok, err := kc.Get(keychainService, sessionTokenAccount)
	if errors.Is(err, ErrSecretNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading session token: %w", err)
	}
	return tok, nil
}

func SetAPIToken(kc Keychain, token string) error {
	return kc.Set(keychainService, sessionTokenAccount, token)
}

func ClearAPIToken(kc Keychain) error {
	return kc.Delete(keychainService, sessionTokenAccount)
}

// GetServerToken returns the bearer token guarding the local preview server,
// generating and storing one on first use.
func GetServerToken(kc Keychain) (string, error) {
	if tok := os.Getenv(envPrefix + "SERVER_TOKEN"); tok != "" {
		return tok, nil
	}
	tok, err := kc.Get(keychainService, serverTokenAccount)
	if err == nil && tok != "" {
		return tok, nil
	}
	if err != nil && !errors.Is(err, ErrSecretNotFound) {
		return "", fmt.Errorf("reading server token: %w", err)
	}
	tok = uuid.NewString()
	if err := kc.Set(keychainService, serverTokenAccount, tok); err != nil {
		return "", fmt.Errorf("storing server token: %w", err)
	}
	return tok, nil
}

// KeychainTokens adapts a Keychain to apiclient.TokenStore.
type KeychainTokens struct {
	Keychain Keychain
}

func (k KeychainTokens) Token() (string, error) {
	return GetAPIToken(k.Keychain)
}

func (k KeychainTokens) SetToken(token string) error {
	return SetAPIToken(k.Keychain, token)
}

func (k KeychainTokens) ClearToken() error {
	return ClearAPIToken(k.Keychain)
}

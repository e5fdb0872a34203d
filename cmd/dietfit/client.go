package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"github.com/kalambet/dietfit/internal/api"
	"github.com/kalambet/dietfit/internal/apiclient"
	"github.com/kalambet/dietfit/internal/config"
	"github.com/kalambet/dietfit/internal/storage"
)

// env bundles what a command needs to reach the backend.
type env struct {
	cfg    config.Config
	client *apiclient.Client
	lang   language.Tag
}

var errNotLoggedIn = errors.New("not logged in: run `dietfit login`")

var loadEnv = func() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	setupLogging(cfg.Log.Level)

	client := apiclient.New(cfg.API.BaseURL, apiclient.Options{
		Tokens:  config.KeychainTokens{Keychain: config.NewKeychain()},
		Timeout: cfg.API.Timeout,
		OnUnauthenticated: func() {
			printWarning("Session expired: run `dietfit login`")
		},
	})

	return &env{
		cfg:    cfg,
		client: client,
		lang:   api.MatchLanguage(cfg.Display.Locale, language.English),
	}, nil
}

var openStore = func(cfg config.Config) (*storage.Store, error) {
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	return store, nil
}

// loggedIn loads the environment and fails early when there is no session.
func loggedIn() (*env, error) {
	e, err := loadEnv()
	if err != nil {
		return nil, err
	}
	if !e.client.LoggedIn() {
		return nil, errNotLoggedIn
	}
	return e, nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parseQuantity(s string) (float64, error) {
	q, err := strconv.ParseFloat(s, 64)
	if err != nil || q <= 0 {
		return 0, fmt.Errorf("invalid quantity %q: must be a positive number", s)
	}
	return q, nil
}

// readSecret reads one line from r, for passwords piped on stdin.
func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("password is required")
	}
	return line, nil
}

//go:build darwin

package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

const defaultsDomain = "com.dietfit.cli"

func defaultDataDir() string {
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, "Library", "Application Support", "dietfit")
	}
	return "dietfit-data"
}

// userDefaults keeps dietfit settings in the com.dietfit.cli defaults domain,
// one entry per dotted key.
type userDefaults struct {
	domain string
}

func newPlatformBackend() ConfigBackend {
	return &userDefaults{domain: defaultsDomain}
}

func (b *userDefaults) Location() string {
	return "UserDefaults domain " + b.domain
}

// defaults runs the defaults tool. missing reports the exit status 1 the tool
// uses for an absent key.
func (b *userDefaults) defaults(args ...string) (out string, missing bool, err error) {
	raw, err := exec.Command("defaults", args...).CombinedOutput()
	out = strings.TrimSpace(string(raw))
	if err == nil {
		return out, false, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return out, true, nil
	}
	return out, false, fmt.Errorf("defaults %s %s: %w (%s)", args[0], b.domain, err, out)
}

func (b *userDefaults) GetString(key string) (string, bool, error) {
	s, missing, err := b.defaults("read", b.domain, key)
	if err != nil || missing {
		return "", false, err
	}
	return s, true, nil
}

func (b *userDefaults) GetInt(key string) (int, bool, error) {
	s, ok, err := b.GetString(key)
	if !ok || err != nil {
		return 0, ok, err
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, true, fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	return i, true, nil
}

func (b *userDefaults) SetString(key, val string) error {
	_, _, err := b.defaults("write", b.domain, key, "-string", val)
	return err
}

func (b *userDefaults) SetInt(key string, val int) error {
	_, _, err := b.defaults("write", b.domain, key, "-int", strconv.Itoa(val))
	return err
}

// Delete succeeds when the key was never written.
func (b *userDefaults) Delete(key string) error {
	_, _, err := b.defaults("delete", b.domain, key)
	return err
}

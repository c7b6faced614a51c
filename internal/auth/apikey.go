// Package auth handles API key resolution and storage.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// ErrNoAPIKey is returned when no key is configured anywhere.
var ErrNoAPIKey = errors.New("no API key configured")

// EnvVars are checked in order for an API key.
var EnvVars = []string{"NEXUS_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY", "API_KEY"}

// Source tells where a key was found.
type Source string

const (
	SourceFlag Source = "flag"
	SourceEnv  Source = "env"
	SourceFile Source = "file"
)

// Credential is a resolved API key.
type Credential struct {
	Key    string
	Source Source
	// Origin is the env var name or file path the key came from.
	Origin string
}

// Resolve finds the API key. A non-empty flag value wins, then the
// environment, then the key file.
func Resolve(flagKey, keyFile string) (Credential, error) {
	if key := strings.TrimSpace(flagKey); key != "" {
		return Credential{Key: key, Source: SourceFlag, Origin: "--api-key"}, nil
	}

	for _, name := range EnvVars {
		if key := strings.TrimSpace(os.Getenv(name)); key != "" {
			return Credential{Key: key, Source: SourceEnv, Origin: name}, nil
		}
	}

	if keyFile != "" {
		key, err := LoadKeyFile(keyFile)
		switch {
		case err == nil:
			return Credential{Key: key, Source: SourceFile, Origin: keyFile}, nil
		case !errors.Is(err, os.ErrNotExist):
			return Credential{}, err
		}
	}

	return Credential{}, ErrNoAPIKey
}

// LoadKeyFile reads a key file. The file holds either the bare key or
// dotenv lines naming one of EnvVars.
func LoadKeyFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read key file: %w", err)
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", fmt.Errorf("key file is empty: %s", path)
	}

	if !strings.Contains(content, "=") {
		return content, nil
	}

	vars, err := godotenv.Unmarshal(content)
	if err != nil {
		return "", fmt.Errorf("failed to parse key file: %w", err)
	}
	for _, name := range EnvVars {
		if key := strings.TrimSpace(vars[name]); key != "" {
			return key, nil
		}
	}
	return "", fmt.Errorf("no API key found in %s", path)
}

// SaveKeyFile writes key to path with owner-only permissions.
func SaveKeyFile(key, path string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrNoAPIKey
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Write with restricted permissions
	if err := os.WriteFile(path, []byte(key+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}
	return os.Chmod(path, 0600)
}

// ClearKeyFile removes the key file. It reports false when there was none.
func ClearKeyFile(path string) (bool, error) {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to remove key file: %w", err)
	}
	return true, nil
}

// Mask hides all but the last four characters of key.
func Mask(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", 8) + key[len(key)-4:]
}

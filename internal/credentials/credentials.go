package credentials

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Environment variables consulted when no explicit credentials are given.
const (
	EnvAPIKey    = "BINANCE_API_KEY"
	EnvAPISecret = "BINANCE_API_SECRET"
)

var (
	ErrMissingCredential     = errors.New("missing credential")
	ErrPlaceholderCredential = errors.New("placeholder credential")
)

// placeholders are the template values shipped in example .env files.
// Running with one of these means the user never edited the template.
var placeholders = map[string]struct{}{
	"your_api_key":                 {},
	"your_api_secret":              {},
	"your_testnet_api_key_here":    {},
	"your_testnet_api_secret_here": {},
}

// Secret is a string that redacts itself when printed or marshaled,
// so credentials never leak into logs or serialized config.
type Secret string

func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}

func (s Secret) GoString() string {
	if s == "" {
		return `""`
	}
	return `"[REDACTED]"`
}

func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"[REDACTED]"`), nil
}

func (s Secret) LogValue() slog.Value {
	return slog.StringValue(s.String())
}

// Credentials holds one API key pair for the duration of a single call.
type Credentials struct {
	APIKey    string
	APISecret Secret
}

// Resolve returns validated credentials. Explicit arguments take precedence
// over the environment; empty arguments fall back per field. Values are
// trimmed, and missing or placeholder values are rejected.
func Resolve(explicitKey, explicitSecret string) (*Credentials, error) {
	key, err := resolveValue(explicitKey, EnvAPIKey)
	if err != nil {
		return nil, err
	}

	secret, err := resolveValue(explicitSecret, EnvAPISecret)
	if err != nil {
		return nil, err
	}

	return &Credentials{
		APIKey:    key,
		APISecret: Secret(secret),
	}, nil
}

func resolveValue(explicit, envName string) (string, error) {
	value := strings.TrimSpace(explicit)
	if value == "" {
		value = strings.TrimSpace(os.Getenv(envName))
	}

	if value == "" {
		return "", fmt.Errorf("%w: %s not set, configure it in .env or the environment", ErrMissingCredential, envName)
	}

	if _, ok := placeholders[value]; ok {
		return "", fmt.Errorf("%w: replace the %s template value with a real key from https://testnet.binancefuture.com/", ErrPlaceholderCredential, envName)
	}

	return value, nil
}

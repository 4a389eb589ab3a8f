package configs

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config carries non-secret settings for the gateway. API credentials never
// live here; they come from the environment or a .env file.
type Config struct {
	// QuoteSuffix is the quote asset expected on futures symbols. A mismatch
	// only warns, it never blocks an order.
	QuoteSuffix string `json:"quote_suffix" yaml:"quote_suffix"`

	// RecvWindow is the signed-request validity window in milliseconds.
	RecvWindow int64 `json:"recv_window" yaml:"recv_window"`

	Proxy string `json:"proxy" yaml:"proxy"`

	Journal  Journal  `json:"journal" yaml:"journal"`
	Diagnose Diagnose `json:"diagnose" yaml:"diagnose"`
}

// Journal enables the Postgres execution journal when a connection string
// is configured.
type Journal struct {
	ConnStr string `json:"conn_str" yaml:"conn_str"`
}

// Diagnose configures the optional AI rejection explainer.
type Diagnose struct {
	APIKey    string `json:"api_key" yaml:"api_key"`
	ModelType string `json:"model_type" yaml:"model_type"`
}

func Default() *Config {
	return &Config{
		QuoteSuffix: "USDT",
		RecvWindow:  5000,
	}
}

// Load reads a JSON config file over the defaults.
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

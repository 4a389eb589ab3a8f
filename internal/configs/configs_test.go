package configs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	config := Default()
	assert.Equal(t, "USDT", config.QuoteSuffix)
	assert.Equal(t, int64(5000), config.RecvWindow)
	assert.Empty(t, config.Journal.ConnStr)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
		"quote_suffix": "BUSD",
		"journal": {"conn_str": "postgres://localhost/quantgate"},
		"diagnose": {"api_key": "sk-test", "model_type": "gpt-4"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	config, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "BUSD", config.QuoteSuffix)
	assert.Equal(t, "postgres://localhost/quantgate", config.Journal.ConnStr)
	assert.Equal(t, "sk-test", config.Diagnose.APIKey)

	// Unset fields keep defaults.
	assert.Equal(t, int64(5000), config.RecvWindow)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)
}

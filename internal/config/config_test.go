package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ".", cfg.Scan.Directory)
	assert.Equal(t, 3, cfg.Scan.MaxDepth)
	assert.True(t, cfg.Scan.UseGitUser)
	assert.True(t, cfg.AI.Enabled)
	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "report", cfg.Report.OutputDir)
}

func TestCredential(t *testing.T) {
	cfg := Default()
	cfg.AI.OpenAIKey = "sk-abc"
	cfg.AI.GeminiKey = "gm-xyz"

	cfg.AI.Provider = "openai"
	assert.Equal(t, "sk-abc", cfg.Credential())

	cfg.AI.Provider = "gemini"
	assert.Equal(t, "gm-xyz", cfg.Credential())

	cfg.AI.Provider = "unknown"
	assert.Equal(t, "", cfg.Credential())
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Scan.Author = "Alice"
	cfg.Scan.MaxDepth = 5
	cfg.AI.Provider = "openai"
	cfg.Report.OutputDir = "/tmp/reports"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Alice", loaded.Scan.Author)
	assert.Equal(t, 5, loaded.Scan.MaxDepth)
	assert.Equal(t, "openai", loaded.AI.Provider)
	assert.Equal(t, "/tmp/reports", loaded.Report.OutputDir)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GITDAY_AUTHOR", "env-author")
	t.Setenv("GITDAY_MAX_DEPTH", "7")
	t.Setenv("GITDAY_AI_TIMEOUT_SECONDS", "15")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, Default().Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-author", loaded.Scan.Author)
	assert.Equal(t, 7, loaded.Scan.MaxDepth)
	assert.Equal(t, 15*time.Second, loaded.AI.Timeout)
}

func TestLoad_NestedEnvKeys(t *testing.T) {
	// Nested keys map to underscore-joined env names via the key replacer
	t.Setenv("GITDAY_SCAN_MAX_DEPTH", "9")
	t.Setenv("GITDAY_SCAN_USE_GIT_USER", "false")
	t.Setenv("GITDAY_REPORT_OUTPUT_DIR", "/tmp/daily")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, Default().Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9, loaded.Scan.MaxDepth)
	assert.False(t, loaded.Scan.UseGitUser)
	assert.Equal(t, "/tmp/daily", loaded.Report.OutputDir)
}

func TestLoad_CredentialEnvWins(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")

	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.AI.GeminiKey = "file-key"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", loaded.AI.GeminiKey)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "reports"), expandPath("~/reports"))
	assert.Equal(t, "/abs/path", expandPath("/abs/path"))
	assert.Equal(t, "", expandPath(""))
}

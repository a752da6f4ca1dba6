package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phonetonote/paperweight/internal/core/domain"
)

func stubSecret(t *testing.T, secret string) {
	t.Helper()
	old := readSecret
	readSecret = func() string { return secret }
	t.Cleanup(func() { readSecret = old })
}

func TestConfigCmd_SkipsBootstrap(t *testing.T) {
	for _, c := range []string{"init", "show", "path", "check"} {
		sub, _, err := rootCmd.Find([]string{"config", c})
		require.NoError(t, err)
		assert.Equal(t, "skip", sub.Annotations[annotationBootstrap], c)
	}
}

func TestConfigInit_WritesDefaults(t *testing.T) {
	dir := t.TempDir()
	stubSecret(t, "sk-test-abcdefgh12345678")

	out, err := executeCommand(t, "config", "init", "--config", dir)

	require.NoError(t, err)
	path := filepath.Join(dir, "config.toml")
	assert.Contains(t, out, "Configuration written to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[store]")
	assert.Contains(t, string(data), "sk-test-abcdefgh12345678")
	assert.Contains(t, string(data), "text-embedding-3-small")
}

func TestConfigInit_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	stubSecret(t, "")

	_, err := executeCommand(t, "config", "init", "--config", dir)
	require.NoError(t, err)

	_, err = executeCommand(t, "config", "init", "--config", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = executeCommand(t, "config", "init", "--config", dir, "--force")
	assert.NoError(t, err)
}

func TestConfigShow_MasksAPIKey(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OPENAI_API_KEY", "")
	stubSecret(t, "sk-test-abcdefgh12345678")

	_, err := executeCommand(t, "config", "init", "--config", dir)
	require.NoError(t, err)

	out, err := executeCommand(t, "config", "show", "--config", dir,
		"--env-file", filepath.Join(dir, "missing.env"), "--store", "/data/papers.db")

	require.NoError(t, err)
	assert.Contains(t, out, "/data/papers.db")
	assert.Contains(t, out, "sk-t...5678")
	assert.NotContains(t, out, "sk-test-abcdefgh12345678")
	assert.Contains(t, out, "gpt-4o-mini")
}

func TestConfigShow_EnvFileOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OPENAI_API_KEY", "")
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("PAPERWEIGHT_EMBEDDING_MODEL=text-embedding-3-large\n"), 0600))

	out, err := executeCommand(t, "config", "show", "--config", dir, "--env-file", envPath)

	require.NoError(t, err)
	assert.Contains(t, out, "text-embedding-3-large")
	assert.Contains(t, out, "(not set)")
}

func TestConfigPath(t *testing.T) {
	dir := t.TempDir()

	out, err := executeCommand(t, "config", "path", "--config", dir)

	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "config.toml"))
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", "(not set)"},
		{"short", "****"},
		{"sk-1234567890abcdef", "sk-1...cdef"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, maskAPIKey(tt.key))
	}
}

func stubEmbeddingCheck(t *testing.T, err error) {
	t.Helper()
	old := checkEmbedding
	checkEmbedding = func(context.Context, *domain.EmbeddingSettings) error { return err }
	t.Cleanup(func() { checkEmbedding = old })
}

func TestConfigCheck_AllOK(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OPENAI_API_KEY", "sk-test-abcdefgh12345678")
	stubEmbeddingCheck(t, nil)

	out, err := executeCommand(t, "config", "check", "--config", dir, "--env-file", filepath.Join(dir, "missing.env"))

	require.NoError(t, err)
	assert.Contains(t, out, "embedding (openai text-embedding-3-small)")
	assert.Contains(t, out, "extraction (gpt-4o-mini)")
	assert.NotContains(t, out, "FAIL")
}

func TestConfigCheck_ReportsFailures(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OPENAI_API_KEY", "")
	stubEmbeddingCheck(t, errors.New("service unreachable"))

	out, err := executeCommand(t, "config", "check", "--config", dir, "--env-file", filepath.Join(dir, "missing.env"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 check(s) failed")
	assert.Contains(t, out, "service unreachable")
	assert.Contains(t, out, "OpenAI API key not set")
}

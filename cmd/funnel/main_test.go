package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewfunnel/funnel/internal/config"
)

// withDatabase points the CLI at a fresh SQLite file and returns an env file
// path that does not exist, so no stray .env is picked up.
func withDatabase(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DB_URL", "sqlite:///"+filepath.Join(dir, "funnel.db"))
	t.Setenv("DATA_DIR", dir)
	t.Setenv("LOG_LEVEL", "ERROR")
	return filepath.Join(dir, "missing.env")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)

	assert.Contains(t, out, "funnel version dev")
	assert.Contains(t, out, "commit: unknown")
}

func TestMigrateAndInvite(t *testing.T) {
	env := withDatabase(t)

	_, err := run(t, "--env-file", env, "migrate")
	require.NoError(t, err)

	out, err := run(t, "--env-file", env, "admin", "invite", "-n", "2", "--note", "launch")
	require.NoError(t, err)
	assert.Len(t, strings.Fields(out), 2)
}

func TestPromote_UnknownUser(t *testing.T) {
	env := withDatabase(t)

	_, err := run(t, "--env-file", env, "admin", "promote", "ghost@example.com")
	assert.Error(t, err)
}

func TestExportCmd(t *testing.T) {
	env := withDatabase(t)
	output := filepath.Join(t.TempDir(), "leads.xlsx")

	_, err := run(t, "--env-file", env, "export", "leads", "-o", output)
	require.NoError(t, err)

	info, err := os.Stat(output)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	_, err = run(t, "--env-file", env, "export", "payroll")
	assert.Error(t, err)
}

func TestApplyServeOverrides(t *testing.T) {
	cfg := applyServeOverrides(config.NewAppConfig(), "127.0.0.1", 9090)
	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())

	cfg = applyServeOverrides(config.NewAppConfig(), "", 0)
	assert.Equal(t, config.NewAppConfig().Addr(), cfg.Addr())
}

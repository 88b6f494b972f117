package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/fluentdb/internal/ui"
)

// setupPresets, geçici dizinde tek preset'li bir dosya yazar.
func setupPresets(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	db := filepath.Join(dir, "app.db")
	content := "presets:\n  default:\n    dialect: sqlite\n    file: " + db + "\n    create: true\n"
	path := filepath.Join(dir, "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	prev := ui.Out
	ui.Out = &buf
	defer func() { ui.Out = prev }()

	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&buf)
	err := cmd.Execute()
	return buf.String(), err
}

func TestCommands_RoundTrip(t *testing.T) {
	cfg := setupPresets(t)

	_, err := run(t, "-c", cfg, "exec", "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL UNIQUE, age INTEGER)")
	require.NoError(t, err)

	out, err := run(t, "-c", cfg, "exec", "INSERT INTO users (name, age) VALUES (?, ?)", "Ann", "31")
	require.NoError(t, err)
	assert.Contains(t, out, "affected")
	assert.Contains(t, out, "last id")

	_, err = run(t, "-c", cfg, "exec", "INSERT INTO users (name, age) VALUES (?, ?)", "Bob", "19")
	require.NoError(t, err)

	out, err = run(t, "-c", cfg, "select", "users", "--columns", "name", "--where", "age > ?", "--arg", "20")
	require.NoError(t, err)
	assert.Contains(t, out, "Ann")
	assert.NotContains(t, out, "Bob")

	out, err = run(t, "-c", cfg, "count", "users")
	require.NoError(t, err)
	assert.Contains(t, out, "2")

	out, err = run(t, "-c", cfg, "query", "SELECT name FROM users ORDER BY name DESC")
	require.NoError(t, err)
	assert.Contains(t, out, "Bob")

	out, err = run(t, "-c", cfg, "info")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite")
}

func TestCommands_ConstraintError(t *testing.T) {
	cfg := setupPresets(t)

	_, err := run(t, "-c", cfg, "exec", "CREATE TABLE tags (name TEXT UNIQUE)")
	require.NoError(t, err)
	_, err = run(t, "-c", cfg, "exec", "INSERT INTO tags (name) VALUES ('go')")
	require.NoError(t, err)

	_, err = run(t, "-c", cfg, "exec", "INSERT INTO tags (name) VALUES ('go')")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unique constraint")
}

func TestCommands_InvalidOrder(t *testing.T) {
	cfg := setupPresets(t)

	_, err := run(t, "-c", cfg, "select", "users", "--order", "name sideways")
	require.Error(t, err)
}

func TestCommands_Presets(t *testing.T) {
	cfg := setupPresets(t)

	out, err := run(t, "-c", cfg, "presets")
	require.NoError(t, err)
	assert.Contains(t, out, "default")
	assert.Contains(t, out, "app.db")
}

func TestCommands_UnknownPreset(t *testing.T) {
	cfg := setupPresets(t)

	_, err := run(t, "-c", cfg, "-p", "missing", "count", "users")
	require.Error(t, err)
}

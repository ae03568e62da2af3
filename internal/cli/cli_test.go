package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticktick-mcp/deployctl/internal/config"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	if err := config.InitFs(afero.NewMemMapFs()); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	rootCmd.Version = "1.2.3"
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "deployctl version 1.2.3\n", out)
}

func TestPlanCommand(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), "secrets.env")
	require.NoError(t, os.WriteFile(envPath, []byte("TICKTICK_CLIENT_ID=\"abc123\"\n# note\n"), 0600))

	out, err := execute(t, "plan", "--output", "json", "--env-file", envPath, "--app", "tasks-mcp")
	require.NoError(t, err)

	var p struct {
		App     string `json:"app"`
		BaseURL string `json:"base_url"`
		Steps   []struct {
			Name     string `json:"name"`
			Commands []struct {
				Args []string `json:"args"`
			} `json:"commands"`
		} `json:"steps"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &p))

	assert.Equal(t, "tasks-mcp", p.App)
	assert.Equal(t, "https://tasks-mcp.fly.dev", p.BaseURL)
	assert.NotContains(t, out, "abc123")

	var envCommands int
	for _, s := range p.Steps {
		if s.Name == "env-secrets" {
			envCommands = len(s.Commands)
			assert.Equal(t, "TICKTICK_CLIENT_ID=***", s.Commands[0].Args[3])
		}
	}
	assert.Equal(t, 1, envCommands)
}

func TestRejectsPositionalArgs(t *testing.T) {
	_, err := execute(t, "status", "extra")
	assert.Error(t, err)
}

func TestConfigCommandIgnoresHostFiles(t *testing.T) {
	out, err := execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "Config file:        (not found)")
	assert.Contains(t, out, "platform-domain:    fly.dev")
}

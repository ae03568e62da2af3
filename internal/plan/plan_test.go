package plan

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ticktick-mcp/deployctl/internal/config"
	"github.com/ticktick-mcp/deployctl/internal/envfile"
)

func testConfig() *config.Config {
	return &config.Config{
		AppName:        "ticktick-mcp",
		Region:         "iad",
		Org:            "personal",
		EnvFile:        ".env",
		PlatformDomain: "fly.dev",
		Flyctl:         "flyctl",
	}
}

func stepNamed(t *testing.T, p *Plan, name string) Step {
	t.Helper()
	for _, s := range p.Steps {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("step %q not in plan", name)
	return Step{}
}

func TestBuildRedactsFileSecrets(t *testing.T) {
	env, err := envfile.Parse(strings.NewReader("TICKTICK_CLIENT_SECRET=\"topsecret\"\nBROKEN\n"), envfile.QuoteLenient)
	require.NoError(t, err)

	p := Build(testConfig(), env)

	assert.Equal(t, "https://ticktick-mcp.fly.dev", p.BaseURL)
	step := stepNamed(t, p, "env-secrets")
	require.Len(t, step.Commands, 1)
	assert.Equal(t, []string{"flyctl", "secrets", "set", "TICKTICK_CLIENT_SECRET=***", "--app", "ticktick-mcp"}, step.Commands[0].Args)
	assert.Len(t, p.Warnings, 1)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, p, "yaml"))
	assert.NotContains(t, buf.String(), "topsecret")
}

func TestBuildWithoutEnvFile(t *testing.T) {
	p := Build(testConfig(), nil)

	step := stepNamed(t, p, "env-secrets")
	assert.Empty(t, step.Commands)
	assert.Contains(t, step.Note, ".env not found")

	platform := stepNamed(t, p, "platform-secrets")
	require.Len(t, platform.Commands, 2)
	assert.Contains(t, platform.Commands[1].Args, "FASTMCP_SERVER_AUTH_OAUTH_PROXY_BASE_URL=https://ticktick-mcp.fly.dev")

	deployStep := stepNamed(t, p, "deploy")
	assert.True(t, deployStep.Commands[0].Interactive)
}

func TestEncode(t *testing.T) {
	p := Build(testConfig(), nil)

	var jsonBuf bytes.Buffer
	require.NoError(t, Encode(&jsonBuf, p, "json"))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &decoded))
	assert.Equal(t, "ticktick-mcp", decoded["app"])

	var yamlBuf bytes.Buffer
	require.NoError(t, Encode(&yamlBuf, p, "yaml"))
	var node map[string]any
	require.NoError(t, yaml.Unmarshal(yamlBuf.Bytes(), &node))
	assert.Equal(t, "iad", node["region"])

	assert.Error(t, Encode(&bytes.Buffer{}, p, "xml"))
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	p := Build(testConfig(), nil)

	jsonPath := filepath.Join(dir, "plan.json")
	require.NoError(t, Save(p, jsonPath))
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))

	yamlPath := filepath.Join(dir, "plan.yml")
	require.NoError(t, Save(p, yamlPath))
	data, err = os.ReadFile(yamlPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "app: ticktick-mcp")
}

// Package plan describes what a deploy would do without running it.
//
// A Plan lists every flyctl invocation in order, with secret values redacted,
// and can be written as YAML or JSON for review.
package plan

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ticktick-mcp/deployctl/internal/config"
	"github.com/ticktick-mcp/deployctl/internal/deploy"
	"github.com/ticktick-mcp/deployctl/internal/envfile"
	"github.com/ticktick-mcp/deployctl/internal/flyctl"
)

// Plan represents the plan file structure
type Plan struct {
	App      string   `yaml:"app" json:"app"`
	Region   string   `yaml:"region" json:"region"`
	Org      string   `yaml:"org" json:"org"`
	BaseURL  string   `yaml:"base_url" json:"base_url"`
	EnvFile  string   `yaml:"env_file" json:"env_file"`
	Steps    []Step   `yaml:"steps" json:"steps"`
	Warnings []string `yaml:"warnings,omitempty" json:"warnings,omitempty"`
}

// Step is one planned stage and the commands it issues.
type Step struct {
	Name     string    `yaml:"name" json:"name"`
	When     string    `yaml:"when,omitempty" json:"when,omitempty"`
	Commands []Command `yaml:"commands,omitempty" json:"commands,omitempty"`
	Note     string    `yaml:"note,omitempty" json:"note,omitempty"`
}

// Command is a flyctl argv.
type Command struct {
	Args        []string `yaml:"args" json:"args"`
	Interactive bool     `yaml:"interactive,omitempty" json:"interactive,omitempty"`
}

// Build derives the plan for cfg. env is nil when the env file is absent.
func Build(cfg *config.Config, env *envfile.Result) *Plan {
	bin := cfg.Flyctl
	cmd := func(interactive bool, args ...string) Command {
		return Command{Args: append([]string{bin}, args...), Interactive: interactive}
	}

	p := &Plan{
		App:     cfg.AppName,
		Region:  cfg.Region,
		Org:     cfg.Org,
		BaseURL: deploy.BaseURL(cfg.AppName, cfg.PlatformDomain),
		EnvFile: cfg.EnvFile,
	}

	p.Steps = append(p.Steps,
		Step{Name: "check-tool", Note: fmt.Sprintf("%s must be on PATH", bin)},
		Step{Name: "authenticate", Commands: []Command{cmd(false, flyctl.WhoamiArgs()...)}},
		Step{Name: "login", When: "whoami fails", Commands: []Command{cmd(true, flyctl.LoginArgs()...)}},
		Step{Name: "ensure-app", Commands: []Command{cmd(false, flyctl.StatusArgs(cfg.AppName)...)}},
		Step{Name: "create-app", When: "status fails", Commands: []Command{cmd(false, flyctl.CreateAppArgs(cfg.AppName, cfg.Org)...)}},
	)

	envStep := Step{Name: "env-secrets"}
	if env == nil {
		envStep.Note = fmt.Sprintf("%s not found, secrets must be set manually", cfg.EnvFile)
	} else {
		for _, e := range env.Entries {
			envStep.Commands = append(envStep.Commands, cmd(false, flyctl.SetSecretArgs(cfg.AppName, e.Key, flyctl.Redacted)...))
		}
		p.Warnings = append(p.Warnings, env.Warnings...)
	}
	p.Steps = append(p.Steps, envStep)

	platform := Step{Name: "platform-secrets"}
	for _, e := range deploy.PlatformSecrets(cfg.AppName, cfg.PlatformDomain) {
		platform.Commands = append(platform.Commands, cmd(false, flyctl.SetSecretArgs(cfg.AppName, e.Key, e.Value)...))
	}
	p.Steps = append(p.Steps, platform,
		Step{Name: "deploy", Commands: []Command{cmd(true, flyctl.DeployArgs(cfg.AppName, cfg.Region)...)}},
	)

	return p
}

// Encode writes the plan in format ("yaml" or "json").
func Encode(w io.Writer, p *Plan, format string) error {
	data, err := marshal(p, format)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Save saves plan to file (format determined by file extension)
func Save(p *Plan, path string) error {
	// Detect format by file extension
	format := "yaml"
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		format = "json"
	}

	data, err := marshal(p, format)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write plan file: %w", err)
	}

	return nil
}

func marshal(p *Plan, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json":
		data, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal plan JSON: %w", err)
		}
		return append(data, '\n'), nil
	case "yaml", "yml", "":
		data, err := yaml.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal plan YAML: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown plan format %q (must be yaml or json)", format)
	}
}

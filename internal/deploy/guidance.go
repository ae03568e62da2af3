package deploy

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ticktick-mcp/deployctl/internal/envfile"
)

// Secrets the MCP server reads at startup to find its public address.
const (
	AppNameSecret = "FLY_APP_NAME"
	BaseURLSecret = "FASTMCP_SERVER_AUTH_OAUTH_PROXY_BASE_URL"
)

// Paths served by the deployed app.
const (
	CallbackPath = "/auth/callback"
	SSEPath      = "/sse"
)

// ManualSecretKeys are suggested when no env file is present.
var ManualSecretKeys = []string{"TICKTICK_CLIENT_ID", "TICKTICK_CLIENT_SECRET"}

// BaseURL is the public address of app on the platform domain.
func BaseURL(app, domain string) string {
	return fmt.Sprintf("https://%s.%s", app, domain)
}

// PlatformSecrets are set on every deploy regardless of the env file.
func PlatformSecrets(app, domain string) []envfile.Entry {
	return []envfile.Entry{
		{Key: AppNameSecret, Value: app},
		{Key: BaseURLSecret, Value: BaseURL(app, domain)},
	}
}

// InstallGuidance returns install instructions for goos.
func InstallGuidance(goos string) []string {
	switch goos {
	case "darwin":
		return []string{
			"brew install flyctl",
			"curl -L https://fly.io/install.sh | sh",
		}
	case "windows":
		return []string{
			`pwsh -Command "iwr https://fly.io/install.ps1 -useb | iex"`,
		}
	default:
		return []string{
			"curl -L https://fly.io/install.sh | sh",
		}
	}
}

// ManualSecretsCommand is the command an operator runs when no env file exists.
func ManualSecretsCommand(binary, app string) string {
	pairs := make([]string, 0, len(ManualSecretKeys))
	for _, k := range ManualSecretKeys {
		pairs = append(pairs, k+"=...")
	}
	return fmt.Sprintf("%s secrets set %s --app %s", binary, strings.Join(pairs, " "), app)
}

// FollowUp holds the addresses and commands printed after a deploy.
type FollowUp struct {
	CallbackURL string
	HealthURL   string
	SSEURL      string
	Commands    []string
}

// NewFollowUp derives the post-deploy guidance for app.
func NewFollowUp(binary, app, domain, healthPath string) FollowUp {
	base := BaseURL(app, domain)
	return FollowUp{
		CallbackURL: base + CallbackPath,
		HealthURL:   base + healthPath,
		SSEURL:      base + SSEPath,
		Commands: []string{
			fmt.Sprintf("%s logs --app %s", binary, app),
			fmt.Sprintf("%s status --app %s", binary, app),
			fmt.Sprintf("npx mcp-remote %s%s", base, SSEPath),
		},
	}
}

// MaskValue hides value entirely, printing one '*' per character up to
// eight.
func MaskValue(value string) string {
	const maxStars = 8
	return strings.Repeat("*", min(utf8.RuneCountInString(value), maxStars))
}

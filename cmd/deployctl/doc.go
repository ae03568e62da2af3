// Command deployctl deploys the TickTick MCP server to Fly.io.
//
// It drives flyctl as a subprocess and stops at the first failing call,
// exiting with that call's exit code.
//
// # Installation
//
//	go install github.com/ticktick-mcp/deployctl/cmd/deployctl@latest
//
// # Quick Start
//
//	deployctl              # full deploy
//	deployctl plan         # show the flyctl commands without running them
//	deployctl status       # probe the deployed app
//	deployctl config       # show resolved configuration
//
// # Sequence
//
// A deploy runs these steps in order:
//   - check that flyctl is installed, printing install instructions if not
//   - check authentication, running the interactive login when needed
//   - create the app if the platform does not know it
//   - set one secret per KEY=VALUE line of the env file (.env by default)
//   - set FLY_APP_NAME and FASTMCP_SERVER_AUTH_OAUTH_PROXY_BASE_URL
//   - run flyctl deploy
//   - print the OAuth callback, health and SSE URLs
//
// # Configuration
//
// Flags override DEPLOYCTL_* environment variables, which override
// config.yaml (in $HOME/.deployctl or the working directory), which
// overrides app and primary_region from fly.toml.
package main

package main

import (
	"fmt"
	"os"

	"github.com/ticktick-mcp/deployctl/internal/cli"
	"github.com/ticktick-mcp/deployctl/internal/config"
	"github.com/ticktick-mcp/deployctl/internal/flyctl"
)

var version = "dev"

func main() {
	// Initialize configuration
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}

	// Execute root command; a failing flyctl call sets the exit code
	if err := cli.Execute(version); err != nil {
		os.Exit(flyctl.ExitCode(err))
	}
}

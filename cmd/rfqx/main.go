// Command rfqx extracts requested line items from RFQ documents.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/rfqx/internal/adapters/driving/cli"
)

// version is set by the linker at release time.
var version = "dev"

func main() {
	// A .env file is optional; API keys usually come from the environment.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

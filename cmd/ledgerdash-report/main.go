package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ledgerdash/internal/cli"
	"ledgerdash/internal/report"
)

func main() {
	cli.LoadEnvFile()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := report.Execute(ctx)
	stop()
	os.Exit(code)
}

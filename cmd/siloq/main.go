package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Siloq-app/siloq-wordpress-sub001/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

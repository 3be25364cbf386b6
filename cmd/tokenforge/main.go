// Command tokenforge creates and funds SPL tokens on a Solana cluster.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(newApp()).ExecuteContext(ctx); err != nil {
		logrus.StandardLogger().WithError(err).Error("tokenforge failed")
		stop()
		os.Exit(1)
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/vorteil/vfsr/pkg/cli"
)

func main() {

	defer cli.HandleErrors()

	cli.InitializeCommands()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.RootCommand.ExecuteContext(ctx)
	if err != nil {
		cli.SetError(err, 1)
		return
	}

}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/srediag/mumble-link/cmd/linkdemo/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.Execute(ctx); err != nil {
		commands.PrintErr("Error: %v", err)
		stop()
		os.Exit(1)
	}
}

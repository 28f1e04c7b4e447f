// Command cardmigrate migrates the legacy card export into the document store.
//
//	cardmigrate migrate pokemon_cards_export.json
//	cardmigrate migrate --store sqlite --url ./cards.db export.json
//	cardmigrate drivers
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// Command server runs the law office backend: REST API, database migrations
// on startup, and the deadline expiry sweep.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/shaheenlf/slf-backend/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("application error: %v", err)
	}
}

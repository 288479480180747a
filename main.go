package main

import (
	"os"

	"webhook-fanout/internal/app"
)

// @title Webhook Fan-out API
// @version 1.0
// @description Replays inbound webhooks to every target registered under a route.
// @BasePath /
func main() {
	if err := app.Run(); err != nil {
		os.Exit(1)
	}
}

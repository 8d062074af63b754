package main

import (
	"voyara/pkg/app"
	"voyara/pkg/config"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	application := app.NewApplication(cfg)
	if err := application.Setup(); err != nil {
		cfg.Log.Fatal("Failed to set up application", "error", err)
	}

	application.Run()
}

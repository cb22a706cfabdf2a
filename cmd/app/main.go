package main

import (
	"flag"
	"log"
	"os"

	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/di"
	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}

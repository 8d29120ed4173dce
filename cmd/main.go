package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/yohannreimer/projeto-treinamentos/internal/app"
)

func main() {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	application, err := app.New()
	if err != nil {
		fmt.Printf("Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	addr := ":" + application.Cfg.Port
	application.Log.Info("Server listening", "addr", addr)
	if err := application.Run(addr); err != nil {
		application.Log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

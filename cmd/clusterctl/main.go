package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/dgallion1/clusterscope/internal/cli"
)

func main() {
	// A missing .env is fine; the environment and config file still apply.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

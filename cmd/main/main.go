package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/BartekS5/xtravels-migrate/internal/cli"
	"github.com/BartekS5/xtravels-migrate/pkg/logger"
)

func main() {
	// .env is optional; XTRAVELS_* variables may come from the environment.
	_ = godotenv.Load()

	err := cli.NewRootCmd().Execute()
	logger.Sync()
	if err != nil {
		cli.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

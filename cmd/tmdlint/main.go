// Package main provides the tmdlint command.
package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/leapstack-labs/tmdlint/internal/cli"
)

func main() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	if err := cli.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/pre-msc-2027/remedy/internal/cli"
)

func main() {
	// A missing .env is fine; environment variables still apply.
	_ = godotenv.Load()

	os.Exit(cli.Run())
}

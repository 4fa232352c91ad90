package main

import (
	"github.com/joho/godotenv"

	"github.com/declpg/declpg/cmd"
)

func main() {
	// Load .env file if it exists (silently ignore errors)
	_ = godotenv.Load()

	cmd.Execute()
}

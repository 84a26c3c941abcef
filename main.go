package main

import (
	"github.com/joho/godotenv"

	"jk-calendar/cmd"
)

func main() {
	// .env is optional; real environments set variables directly
	godotenv.Load()

	cmd.Execute()
}

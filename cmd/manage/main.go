package main

import (
	"github.com/joho/godotenv"

	"github.com/dinkominfo-madiun/appcensus/internal/cli"
)

func main() {
	_ = godotenv.Load()
	cli.Execute()
}

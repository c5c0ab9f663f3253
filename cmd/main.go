package main

import (
	"os"

	"github.com/StruginiCrew/odyssey/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/leadlift/leadlift/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

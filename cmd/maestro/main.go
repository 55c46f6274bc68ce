package main

import (
	"os"

	"github.com/nadzzz/maestro/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.td.teradata.com/sandbox/kilo/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

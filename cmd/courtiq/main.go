package main

import (
	"os"

	"courtiq-landing/cmd/courtiq/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

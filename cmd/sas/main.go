package main

import (
	"os"

	"github.com/sas-community/sas-sdk-go/cmd/sas/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

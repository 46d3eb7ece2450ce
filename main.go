package main

import (
	"os"

	"github.com/tallylog/tallylog/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

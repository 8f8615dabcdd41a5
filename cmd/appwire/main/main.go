package main

import (
	"os"

	appwire "github.com/appwire/appwire/cmd/appwire"
)

func main() {
	rootCmd := appwire.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Package main is the entry point for the vk CLI tool.
package main

import (
	"os"

	"github.com/aidanlsb/vaultkit/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

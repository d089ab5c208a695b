// Package main is the entry point for the weather dashboard terminal client.
package main

import (
	"os"

	"github.com/i474232898/weather-dashboard/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

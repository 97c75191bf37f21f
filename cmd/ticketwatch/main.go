// Package main is the entry point for ticketwatch.
package main

import (
	"os"

	"ticketwatch/cmd/ticketwatch/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}

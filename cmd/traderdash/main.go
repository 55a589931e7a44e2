package main

import (
	"os"

	"github.com/rustyeddy/traderdash/cmd/traderdash/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

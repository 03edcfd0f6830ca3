package main

import (
	"os"

	"github.com/Tantawi65/VLCSub/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

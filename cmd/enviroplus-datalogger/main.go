package main

import (
	"os"

	"github.com/s-boardman/enviroplus-datalogger/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/jdalisay/anihan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/dshills/rvconf/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}

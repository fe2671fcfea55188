package main

import (
	"os"

	"github.com/rpattn/gamesetl/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

package main

import (
	"os"

	"github.com/redpenlabs/redpen/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}

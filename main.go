package main

import (
	"context"
	"os"

	"github.com/memalpha/memalpha-go/cli"
)

func main() {
	os.Exit(cli.Run(context.Background(), os.Args))
}

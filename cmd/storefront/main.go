package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/jrsteele09/go-storefront/internal/cli"
)

const version = "0.1.0"

func main() {
	if err := fang.Execute(
		context.Background(),
		cli.NewRootCmd(),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}

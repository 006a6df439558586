package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/kochabx/workforce/console"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", console.Message(err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := console.New()
	err := c.Execute(ctx, os.Args[1:])
	if cerr := c.Close(); err == nil {
		err = cerr
	}
	return err
}

// Command mendel computes Mendelian crosses from the command line and serves
// the same engine over HTTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mendel/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/internal/cli"
	"github.com/matzehuels/kintree/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	verbose, err := run(ctx)
	switch {
	case err == nil:
		return
	case stderrors.Is(err, context.Canceled):
		os.Exit(130)
	case verbose:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	default:
		// Coded errors carry a message meant for people; causes are for --verbose.
		fmt.Fprintf(os.Stderr, "Error: %s\n", errors.UserMessage(err))
	}
	os.Exit(1)
}

// run executes the command line and reports whether --verbose was set.
func run(ctx context.Context) (bool, error) {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	// The level is only known after flag parsing.
	loadSettings := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		return loadSettings(cmd, args)
	}

	return verbose, root.ExecuteContext(ctx)
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "librarydesk",
		Short:        "Library front desk: books, members and loans",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), createUserCmd(), setPasswordCmd(), staffCmd())
	return root
}

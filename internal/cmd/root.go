package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "doemart",
	Short: "DoEmart - local marketplace client",
	Long: `DoEmart connects local shopkeepers with customers. Shopkeepers list
their shop and products, customers browse and order, and an administrator
approves new accounts.

Every page of the marketplace is a subcommand here, and "serve" exposes the
same pages as a JSON API. The signed-in session is kept between runs.`,
	SilenceUsage: true,
}

// Execute runs the root command, cancelling its context on interrupt
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

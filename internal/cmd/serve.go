package cmd

import (
	"context"
	"fmt"

	"github.com/matthieukhl/doemart/internal/backend"
	"github.com/matthieukhl/doemart/internal/backend/storage"
	"github.com/matthieukhl/doemart/internal/server"
	"github.com/spf13/cobra"
)

var seedOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the DoEmart JSON API",
	Long: `Start the DoEmart API server which provides:
- Session routes to sign in, register, and sign out
- The admin, shopkeeper, and user dashboards, gated by role and approval
- A health check for the configured backend`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&seedOnStart, "seed", false, "Load sample accounts, shops, and products before serving")
}

func runServer(cmd *cobra.Command, args []string) error {
	fmt.Println("🚀 DoEmart Starting...")

	fmt.Println("📝 Loading configuration...")
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Printf("✅ Using %s backend\n", a.backend.Name())

	if seedOnStart {
		fmt.Println("📊 Populating with sample data...")
		if err := seed(cmd.Context(), a); err != nil {
			return fmt.Errorf("failed to populate sample data: %w", err)
		}
	}

	// Gated routes answer 503 until the saved session is restored
	fmt.Println("🔑 Restoring session in the background...")
	a.store.Start(cmd.Context())

	fmt.Println("⚙️  Setting up server...")
	srv := server.NewServer(a.backend, a.store, a.log)

	fmt.Printf("🌐 Starting server on %s...\n", a.cfg.Server.Addr)
	if err := srv.Run(cmd.Context(), a.cfg.Server.Addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	fmt.Println("👋 Server stopped")
	return nil
}

// seed fills the served backend. Providers other than memory are seeded through
// a separate handle with throwaway session storage.
func seed(ctx context.Context, a *app) error {
	if a.cfg.Backend.Provider == "memory" {
		return populateSampleData(ctx, a.backend)
	}

	b, err := backend.NewBackend(a.cfg, storage.NewMemory())
	if err != nil {
		return err
	}
	defer b.Close()
	return populateSampleData(ctx, b)
}

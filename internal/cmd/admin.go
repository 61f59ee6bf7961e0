package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/matthieukhl/doemart/internal/dashboard"
	"github.com/spf13/cobra"
)

var (
	approveID string
	rejectID  string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Show the admin dashboard and decide pending accounts",
	Long: `Show platform totals and the accounts waiting for approval.

Use --approve or --reject with a profile ID to decide a pending account;
the dashboard is reloaded afterwards.`,
	RunE: adminDashboard,
}

func init() {
	rootCmd.AddCommand(adminCmd)

	adminCmd.Flags().StringVar(&approveID, "approve", "", "Approve the pending profile with this ID")
	adminCmd.Flags().StringVar(&rejectID, "reject", "", "Reject the pending profile with this ID")
	adminCmd.MarkFlagsMutuallyExclusive("approve", "reject")
}

func adminDashboard(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	snap, err := a.requirePage("/admin")
	if err != nil {
		return err
	}

	admin := dashboard.NewAdmin(a.backend, a.log, snap.ActorID())
	ctx := cmd.Context()

	switch {
	case approveID != "":
		id, err := uuid.Parse(approveID)
		if err != nil {
			return fmt.Errorf("invalid profile id %q: %w", approveID, err)
		}
		if err := admin.Approve(ctx, id); err != nil {
			return fmt.Errorf("failed to approve %s: %w", id, err)
		}
		fmt.Printf("✅ Approved %s\n\n", id)
	case rejectID != "":
		id, err := uuid.Parse(rejectID)
		if err != nil {
			return fmt.Errorf("invalid profile id %q: %w", rejectID, err)
		}
		if err := admin.Reject(ctx, id); err != nil {
			return fmt.Errorf("failed to reject %s: %w", id, err)
		}
		fmt.Printf("🚫 Rejected %s\n\n", id)
	default:
		if err := admin.Load(ctx); err != nil {
			fmt.Printf("⚠️  Some data could not be loaded: %v\n\n", err)
		}
	}

	renderAdmin(cmd.OutOrStdout(), admin.View())
	return nil
}

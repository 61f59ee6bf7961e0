package cmd

import (
	"fmt"
	"os"

	"github.com/matthieukhl/doemart/internal/gate"
	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to DoEmart",
	Long: `Sign in with email and password. The session is saved and reused by
the other commands until you run "doemart logout".

The password may also be given through DOEMART_PASSWORD.`,
	RunE: login,
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password")
	loginCmd.MarkFlagRequired("email")
}

func login(cmd *cobra.Command, args []string) error {
	password := loginPassword
	if password == "" {
		password = os.Getenv("DOEMART_PASSWORD")
	}
	if password == "" {
		return fmt.Errorf("password is required (--password or DOEMART_PASSWORD)")
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Printf("🔑 Signing in as %s...\n", loginEmail)
	if err := a.store.SignIn(cmd.Context(), loginEmail, password); err != nil {
		return fmt.Errorf("sign in failed: %w", err)
	}

	snap := a.store.Snapshot()
	if snap.Profile == nil {
		fmt.Println("⚠️  Signed in, but no profile exists for this account yet")
		return nil
	}

	fmt.Printf("✅ Welcome back, %s (%s, %s)\n", snap.Profile.FullName, snap.Profile.Role, snap.Profile.Status)
	if !snap.Profile.Approved() {
		fmt.Println("⏳ Your account is waiting for admin approval. Please check back later.")
		return nil
	}
	fmt.Printf("➡️  Your dashboard: %s\n", gate.HomePath(snap.Profile))
	return nil
}

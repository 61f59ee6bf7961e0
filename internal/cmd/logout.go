package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the saved session",
	RunE:  logout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func logout(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.store.Snapshot().SignedIn() {
		fmt.Println("ℹ️  Not signed in")
		return nil
	}

	if err := a.store.SignOut(cmd.Context()); err != nil {
		return err
	}
	fmt.Println("👋 Signed out")
	return nil
}

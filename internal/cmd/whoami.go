package cmd

import (
	"fmt"

	"github.com/matthieukhl/doemart/internal/gate"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account and where it may go",
	RunE:  whoami,
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

func whoami(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	snap := a.store.Snapshot()
	if !snap.SignedIn() {
		fmt.Println("Not signed in. Run `doemart login` or `doemart register`.")
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Email:   %s\n", snap.Identity.Email)
	fmt.Fprintf(out, "User ID: %s\n", snap.Identity.ID)
	if snap.Profile == nil {
		fmt.Fprintln(out, "Profile: none")
		return nil
	}
	fmt.Fprintf(out, "Name:    %s\n", snap.Profile.FullName)
	fmt.Fprintf(out, "Role:    %s\n", snap.Profile.Role)
	fmt.Fprintf(out, "Status:  %s\n", snap.Profile.Status)
	fmt.Fprintf(out, "Home:    %s\n", gate.HomePath(snap.Profile))

	fmt.Fprintln(out, "\nPages:")
	for _, path := range []string{"/admin", "/shopkeeper", "/user"} {
		fmt.Fprintf(out, "  %-12s %s\n", path, gate.Evaluate(snap, gate.Routes[path]))
	}
	return nil
}

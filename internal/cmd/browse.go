package cmd

import (
	"fmt"
	"strings"

	"github.com/matthieukhl/doemart/internal/dashboard"
	"github.com/spf13/cobra"
)

var browseFilter dashboard.Filter

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse shops and products",
	Long: `Show active shops, available products, and your orders.

--query matches names and descriptions case-insensitively; --city and
--category narrow shops and products to an exact value.`,
	RunE: browse,
}

func init() {
	rootCmd.AddCommand(browseCmd)

	browseCmd.Flags().StringVarP(&browseFilter.Query, "query", "q", "", "Search shops and products")
	browseCmd.Flags().StringVar(&browseFilter.City, "city", "", "Only shops in this city")
	browseCmd.Flags().StringVar(&browseFilter.Category, "category", "", "Only products in this category")
}

func browse(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	snap, err := a.requirePage("/user")
	if err != nil {
		return err
	}

	user := dashboard.NewUser(a.backend, a.log, snap.ActorID())
	if err := user.Load(cmd.Context()); err != nil {
		fmt.Printf("⚠️  Some data could not be loaded: %v\n\n", err)
	}

	out := cmd.OutOrStdout()
	if cities := user.Cities(); len(cities) > 0 {
		fmt.Fprintf(out, "Cities: %s\n", strings.Join(cities, ", "))
	}
	if categories := user.Categories(); len(categories) > 0 {
		fmt.Fprintf(out, "Categories: %s\n", strings.Join(categories, ", "))
	}
	fmt.Fprintln(out)

	shops, products := user.Search(browseFilter)
	renderBrowse(out, shops, products, user.View().Orders)
	return nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/matthieukhl/doemart/internal/auth"
	"github.com/matthieukhl/doemart/internal/models"
	"github.com/spf13/cobra"
)

var reg struct {
	email, password, name, phone, address, role string
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a DoEmart account",
	Long: `Create a customer or shopkeeper account. New accounts start pending
and can use their dashboard once an administrator approves them.`,
	RunE: register,
}

func init() {
	rootCmd.AddCommand(registerCmd)

	registerCmd.Flags().StringVar(&reg.email, "email", "", "Account email")
	registerCmd.Flags().StringVar(&reg.password, "password", "", "Account password (or DOEMART_PASSWORD)")
	registerCmd.Flags().StringVar(&reg.name, "name", "", "Full name")
	registerCmd.Flags().StringVar(&reg.phone, "phone", "", "Phone number")
	registerCmd.Flags().StringVar(&reg.address, "address", "", "Postal address")
	registerCmd.Flags().StringVar(&reg.role, "role", string(models.RoleUser), "Account type: user or shopkeeper")
	registerCmd.MarkFlagRequired("email")
	registerCmd.MarkFlagRequired("name")
}

func register(cmd *cobra.Command, args []string) error {
	role, err := models.ParseRole(reg.role)
	if err != nil {
		return err
	}
	password := reg.password
	if password == "" {
		password = os.Getenv("DOEMART_PASSWORD")
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Printf("📝 Registering %s as %s...\n", reg.email, role)
	err = a.store.SignUp(cmd.Context(), auth.Registration{
		Email:    reg.email,
		Password: password,
		FullName: reg.name,
		Phone:    reg.phone,
		Address:  reg.address,
		Role:     role,
	})
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	fmt.Println("✅ Account created")
	fmt.Println("⏳ Your account is waiting for admin approval. Please check back later.")
	return nil
}

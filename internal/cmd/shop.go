package cmd

import (
	"fmt"

	"github.com/matthieukhl/doemart/internal/dashboard"
	"github.com/matthieukhl/doemart/internal/models"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var shopCmd = &cobra.Command{
	Use:   "shop",
	Short: "Show the shopkeeper dashboard",
	Long: `Show your shop with its products and incoming orders, newest first.

Use "shop create" to register your shop and "shop add-product" to list
products in it.`,
	RunE: shopDashboard,
}

var shopForm struct {
	name, shopType, description, address, city, state, pincode, phone, email, hours string
}

var shopCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create your shop",
	RunE:  createShop,
}

var productForm struct {
	name, description, category, price, discount, unit, imageURL string
	quantity                                                     int
}

var addProductCmd = &cobra.Command{
	Use:   "add-product",
	Short: "Add a product to your shop",
	Long: `Add a product to your shop. The final price is computed from the price
and discount percentage, and the product is available while quantity > 0.`,
	RunE: addProduct,
}

func init() {
	rootCmd.AddCommand(shopCmd)
	shopCmd.AddCommand(shopCreateCmd, addProductCmd)

	f := shopCreateCmd.Flags()
	f.StringVar(&shopForm.name, "name", "", "Shop name")
	f.StringVar(&shopForm.shopType, "type", string(models.ShopTypeRetail), "Shop type: retail, wholesale, service, restaurant, other")
	f.StringVar(&shopForm.description, "description", "", "Short description")
	f.StringVar(&shopForm.address, "address", "", "Street address")
	f.StringVar(&shopForm.city, "city", "", "City")
	f.StringVar(&shopForm.state, "state", "", "State")
	f.StringVar(&shopForm.pincode, "pincode", "", "Pincode")
	f.StringVar(&shopForm.phone, "phone", "", "Contact phone")
	f.StringVar(&shopForm.email, "email", "", "Contact email")
	f.StringVar(&shopForm.hours, "opening-hours", "", "Opening hours, e.g. 9AM-9PM")

	p := addProductCmd.Flags()
	p.StringVar(&productForm.name, "name", "", "Product name")
	p.StringVar(&productForm.description, "description", "", "Description")
	p.StringVar(&productForm.category, "category", "", "Category")
	p.StringVar(&productForm.price, "price", "", "Price")
	p.StringVar(&productForm.discount, "discount", "0", "Discount percentage (0-100)")
	p.IntVar(&productForm.quantity, "quantity", 0, "Quantity in stock")
	p.StringVar(&productForm.unit, "unit", "piece", "Unit, e.g. piece, kg, litre")
	p.StringVar(&productForm.imageURL, "image-url", "", "Image URL")
}

// loadShopkeeper opens the gated shopkeeper dashboard and loads it
func loadShopkeeper(cmd *cobra.Command) (*app, *dashboard.Shopkeeper, error) {
	a, err := newApp(cmd.Context())
	if err != nil {
		return nil, nil, err
	}

	snap, err := a.requirePage("/shopkeeper")
	if err != nil {
		a.Close()
		return nil, nil, err
	}

	sk := dashboard.NewShopkeeper(a.backend, a.log, snap.ActorID())
	if err := sk.Load(cmd.Context()); err != nil {
		fmt.Printf("⚠️  Some data could not be loaded: %v\n\n", err)
	}
	return a, sk, nil
}

func shopDashboard(cmd *cobra.Command, args []string) error {
	a, sk, err := loadShopkeeper(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	renderShop(cmd.OutOrStdout(), sk.View())
	return nil
}

func createShop(cmd *cobra.Command, args []string) error {
	shopType, err := models.ParseShopType(shopForm.shopType)
	if err != nil {
		return err
	}

	a, sk, err := loadShopkeeper(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Printf("🏪 Creating %s...\n", shopForm.name)
	err = sk.CreateShop(cmd.Context(), models.ShopInput{
		ShopName:     shopForm.name,
		ShopType:     shopType,
		Description:  shopForm.description,
		Address:      shopForm.address,
		City:         shopForm.city,
		State:        shopForm.state,
		Pincode:      shopForm.pincode,
		Phone:        shopForm.phone,
		Email:        shopForm.email,
		OpeningHours: shopForm.hours,
	})
	if err != nil {
		return fmt.Errorf("failed to create shop: %w", err)
	}

	fmt.Println("✅ Shop created")
	renderShop(cmd.OutOrStdout(), sk.View())
	return nil
}

func addProduct(cmd *cobra.Command, args []string) error {
	price, err := decimal.NewFromString(productForm.price)
	if err != nil {
		return fmt.Errorf("invalid price %q: %w", productForm.price, err)
	}
	discount, err := decimal.NewFromString(productForm.discount)
	if err != nil {
		return fmt.Errorf("invalid discount %q: %w", productForm.discount, err)
	}

	a, sk, err := loadShopkeeper(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Printf("📦 Adding %s...\n", productForm.name)
	err = sk.AddProduct(cmd.Context(), models.ProductInput{
		Name:               productForm.name,
		Description:        productForm.description,
		Category:           productForm.category,
		Price:              price,
		DiscountPercentage: discount,
		Quantity:           productForm.quantity,
		Unit:               productForm.unit,
		ImageURL:           productForm.imageURL,
	})
	if err != nil {
		return fmt.Errorf("failed to add product: %w", err)
	}

	fmt.Printf("✅ Added %s at %s\n\n", productForm.name, models.FinalPrice(price, discount).StringFixed(2))
	renderShop(cmd.OutOrStdout(), sk.View())
	return nil
}

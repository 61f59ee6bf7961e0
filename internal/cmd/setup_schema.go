package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/matthieukhl/doemart/internal/backend"
	"github.com/matthieukhl/doemart/internal/backend/storage"
	"github.com/matthieukhl/doemart/internal/config"
	"github.com/matthieukhl/doemart/internal/database"
	"github.com/matthieukhl/doemart/internal/models"
	"github.com/matthieukhl/doemart/internal/types"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	dropFirst bool
	skipData  bool
)

var setupSchemaCmd = &cobra.Command{
	Use:   "setup-schema",
	Short: "Create the marketplace tables and sample data",
	Long: `Creates the marketplace tables (profiles, shops, products, orders,
order_items, feedback) and the identity tables for the postgres and mysql
backends, then populates them with sample accounts, shops, and products.

Sample data goes through the configured backend, so it also works against
the hosted service, whose schema is managed there.`,
	RunE: setupSchema,
}

func init() {
	rootCmd.AddCommand(setupSchemaCmd)

	setupSchemaCmd.Flags().BoolVar(&dropFirst, "drop-first", false, "Drop existing tables before creating")
	setupSchemaCmd.Flags().BoolVar(&skipData, "schema-only", false, "Create schema only, skip sample data")
}

func setupSchema(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	fmt.Println("🔧 Setting up DoEmart data...")

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch cfg.Backend.Provider {
	case "postgres", "mysql":
		if err := createSchema(ctx, cfg); err != nil {
			return err
		}
	default:
		fmt.Printf("ℹ️  The %s backend manages its own schema, skipping tables\n", cfg.Backend.Provider)
	}

	if !skipData {
		// Seeding signs in as each sample account; keep those sessions out of the session file
		b, err := backend.NewBackend(cfg, storage.NewMemory())
		if err != nil {
			return fmt.Errorf("failed to create backend: %w", err)
		}
		defer b.Close()

		fmt.Println("📊 Populating with sample data...")
		if err := populateSampleData(ctx, b); err != nil {
			return fmt.Errorf("failed to populate sample data: %w", err)
		}
	}

	fmt.Println("✅ Setup complete!")
	return nil
}

func createSchema(ctx context.Context, cfg *config.Config) error {
	dbCfg := cfg.DB
	dbCfg.Driver = cfg.Backend.Provider

	db, err := database.NewConnection(&dbCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if dropFirst {
		fmt.Println("🗑️  Dropping existing tables...")
		if err := db.DropSchema(ctx); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
	}

	fmt.Println("📋 Creating schema...")
	if err := db.SetupSchema(ctx); err != nil {
		return fmt.Errorf("failed to setup schema: %w", err)
	}
	return nil
}

const samplePassword = "doemart123"

type sampleAccount struct {
	email, name, phone string
	role               models.Role
	status             models.AccountStatus
	shop               *models.ShopInput
	products           []models.ProductInput
}

func product(name, category, price, discount string, quantity int, unit string) models.ProductInput {
	return models.ProductInput{
		Name:               name,
		Category:           category,
		Price:              decimal.RequireFromString(price),
		DiscountPercentage: decimal.RequireFromString(discount),
		Quantity:           quantity,
		Unit:               unit,
	}
}

var sampleAccounts = []sampleAccount{
	{email: "admin@doemart.local", name: "DoEmart Admin", role: models.RoleAdmin, status: models.StatusApproved},
	{
		email: "greenmart@doemart.local", name: "Suresh Patil", phone: "9822000001",
		role: models.RoleShopkeeper, status: models.StatusApproved,
		shop: &models.ShopInput{
			ShopName: "Green Mart", ShopType: models.ShopTypeRetail,
			Description: "Fresh vegetables, fruits, and daily groceries",
			Address:     "14 FC Road", City: "Pune", State: "Maharashtra", Pincode: "411004",
			Phone: "9822000001", OpeningHours: "8AM-10PM",
		},
		products: []models.ProductInput{
			product("Basmati Rice", "grocery", "120", "10", 40, "kg"),
			product("Alphonso Mango", "fruits", "600", "0", 25, "dozen"),
			product("Toor Dal", "grocery", "150", "5", 0, "kg"),
		},
	},
	{
		email: "bluestore@doemart.local", name: "Farah Shaikh", phone: "9822000002",
		role: models.RoleShopkeeper, status: models.StatusApproved,
		shop: &models.ShopInput{
			ShopName: "Blue Store", ShopType: models.ShopTypeWholesale,
			Description: "Household supplies in bulk",
			Address:     "7 Camp Street", City: "Pune", State: "Maharashtra", Pincode: "411001",
			Phone: "9822000002",
		},
		products: []models.ProductInput{
			product("Detergent Powder", "household", "450", "20", 60, "pack"),
			product("Steel Bucket", "household", "300", "0", 15, "piece"),
		},
	},
	{
		email: "greenfoods@doemart.local", name: "Nikhil Rao", phone: "9833000003",
		role: models.RoleShopkeeper, status: models.StatusApproved,
		shop: &models.ShopInput{
			ShopName: "Green Foods", ShopType: models.ShopTypeRestaurant,
			Description: "Vegetarian thali and snacks",
			Address:     "22 Linking Road", City: "Mumbai", State: "Maharashtra", Pincode: "400050",
			Phone: "9833000003", OpeningHours: "11AM-11PM",
		},
		products: []models.ProductInput{
			product("Veg Thali", "meals", "250", "0", 30, "plate"),
		},
	},
	{email: "asha@doemart.local", name: "Asha Kulkarni", phone: "9890000004", role: models.RoleUser, status: models.StatusApproved},
	{email: "ravi@doemart.local", name: "Ravi Menon", phone: "9890000005", role: models.RoleUser, status: models.StatusPending},
	{email: "newshop@doemart.local", name: "Imran Khan", phone: "9890000006", role: models.RoleShopkeeper, status: models.StatusPending},
}

func rowID(row types.Row) (uuid.UUID, error) {
	return uuid.Parse(fmt.Sprint(row["id"]))
}

// populateSampleData registers every sample account through the backend, with shops, products, and orders
func populateSampleData(ctx context.Context, b types.Backend) error {
	shops := make(map[string]uuid.UUID)
	var customer uuid.UUID

	for _, acct := range sampleAccounts {
		session, err := b.SignUp(ctx, acct.email, samplePassword, map[string]any{
			"full_name": acct.name,
			"role":      acct.role,
		})
		if errors.Is(err, types.ErrEmailTaken) {
			fmt.Printf("   ⏭️  %s already exists\n", acct.email)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", acct.email, err)
		}
		fmt.Printf("   👤 %s (%s, %s)\n", acct.email, acct.role, acct.status)

		profile, err := types.ToRow(models.ProfileInput{
			ID:       session.Identity.ID,
			Email:    session.Identity.Email,
			FullName: acct.name,
			Phone:    acct.phone,
			Role:     acct.role,
			Status:   acct.status,
		})
		if err != nil {
			return err
		}
		if _, err := b.Insert(ctx, models.CollectionProfiles, profile); err != nil {
			return fmt.Errorf("failed to create profile for %s: %w", acct.email, err)
		}

		if acct.shop != nil {
			id, err := createSampleShop(ctx, b, session.Identity.ID, *acct.shop, acct.products)
			if err != nil {
				return err
			}
			shops[acct.shop.ShopName] = id
		}
		if acct.role == models.RoleUser && acct.status == models.StatusApproved && customer == uuid.Nil {
			customer = session.Identity.ID
		}

		if err := b.SignOut(ctx); err != nil {
			return fmt.Errorf("failed to sign out %s: %w", acct.email, err)
		}
	}

	if shopID, ok := shops["Green Mart"]; ok && customer != uuid.Nil {
		fmt.Println("   🛒 Creating orders...")
		if err := createSampleOrders(ctx, b, customer, shopID); err != nil {
			return err
		}
	}

	fmt.Printf("   🔑 Sample password for every account: %s\n", samplePassword)
	return nil
}

func createSampleShop(ctx context.Context, b types.Backend, owner uuid.UUID, in models.ShopInput, products []models.ProductInput) (uuid.UUID, error) {
	in.ShopkeeperID = owner
	in.IsActive = true
	if err := in.Validate(); err != nil {
		return uuid.Nil, err
	}

	record, err := types.ToRow(in)
	if err != nil {
		return uuid.Nil, err
	}
	row, err := b.Insert(ctx, models.CollectionShops, record)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create shop %s: %w", in.ShopName, err)
	}
	shopID, err := rowID(row)
	if err != nil {
		return uuid.Nil, err
	}
	fmt.Printf("   🏪 %s in %s\n", in.ShopName, in.City)

	for _, p := range products {
		p.ShopID = shopID
		p.Prepare()
		if err := p.Validate(); err != nil {
			return uuid.Nil, err
		}
		record, err := types.ToRow(p)
		if err != nil {
			return uuid.Nil, err
		}
		if _, err := b.Insert(ctx, models.CollectionProducts, record); err != nil {
			return uuid.Nil, fmt.Errorf("failed to create product %s: %w", p.Name, err)
		}
	}
	fmt.Printf("      📦 %d products\n", len(products))

	return shopID, nil
}

func createSampleOrders(ctx context.Context, b types.Backend, customer, shopID uuid.UUID) error {
	orders := []struct {
		orderType models.OrderType
		status    models.OrderStatus
		total     string
		payment   models.PaymentMethod
		paid      models.PaymentStatus
		delivery  models.DeliveryType
		notes     string
	}{
		{models.OrderTypeSpotBilling, models.OrderStatusCompleted, "216.00", models.PaymentUPI, models.PaymentStatusCompleted, models.DeliveryPickup, ""},
		{models.OrderTypeAdvanceOrder, models.OrderStatusConfirmed, "1200.00", models.PaymentCash, models.PaymentStatusPending, models.DeliveryDelivery, "Deliver after 6PM"},
	}

	for _, o := range orders {
		record, err := types.ToRow(map[string]any{
			"user_id":        customer,
			"shop_id":        shopID,
			"order_type":     o.orderType,
			"status":         o.status,
			"total_amount":   decimal.RequireFromString(o.total),
			"payment_method": o.payment,
			"payment_status": o.paid,
			"delivery_type":  o.delivery,
		})
		if err != nil {
			return err
		}
		if o.notes != "" {
			record["notes"] = o.notes
		}
		if _, err := b.Insert(ctx, models.CollectionOrders, record); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
	}
	return nil
}

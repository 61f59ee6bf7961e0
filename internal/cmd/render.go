package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/matthieukhl/doemart/internal/dashboard"
	"github.com/matthieukhl/doemart/internal/models"
)

const timeLayout = "2006-01-02 15:04"

func newTable(w io.Writer, headers ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	return tw
}

func renderAdmin(w io.Writer, v dashboard.AdminView) {
	fmt.Fprintln(w, "Admin Dashboard")
	fmt.Fprintf(w, "  Total Users:       %d\n", v.Stats.TotalUsers)
	fmt.Fprintf(w, "  Pending Approvals: %d\n", v.Stats.PendingApprovals)
	fmt.Fprintf(w, "  Total Shops:       %d\n", v.Stats.TotalShops)
	fmt.Fprintf(w, "  Total Orders:      %d\n", v.Stats.TotalOrders)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Pending User Approvals")
	if len(v.Pending) == 0 {
		fmt.Fprintln(w, "  No pending approvals")
		return
	}
	tw := newTable(w, "ID", "NAME", "EMAIL", "ROLE", "CREATED AT")
	for _, p := range v.Pending {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.FullName, p.Email, p.Role, p.CreatedAt.Format(timeLayout))
	}
	tw.Flush()
}

func renderProducts(w io.Writer, products []models.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "  No products")
		return
	}
	tw := newTable(w, "NAME", "CATEGORY", "PRICE", "FINAL PRICE", "STOCK", "AVAILABLE")
	for _, p := range products {
		price := p.Price.StringFixed(2)
		if p.HasDiscount() {
			price = fmt.Sprintf("%s (-%s%%)", price, p.DiscountPercentage.String())
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d %s\t%t\n",
			p.Name, p.Category, price, p.FinalPrice.StringFixed(2), p.Quantity, p.Unit, p.IsAvailable)
	}
	tw.Flush()
}

func renderOrders(w io.Writer, orders []models.Order) {
	if len(orders) == 0 {
		fmt.Fprintln(w, "  No orders yet")
		return
	}
	tw := newTable(w, "ORDER", "TYPE", "STATUS", "TOTAL", "PAYMENT", "DELIVERY", "PLACED")
	for _, o := range orders {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s/%s\t%s\t%s\n",
			o.ID.String()[:8], o.OrderType, o.Status, o.TotalAmount.StringFixed(2),
			o.PaymentMethod, o.PaymentStatus, o.DeliveryType, o.CreatedAt.Format(timeLayout))
	}
	tw.Flush()
}

func renderShop(w io.Writer, v dashboard.ShopkeeperView) {
	if v.Shop == nil {
		fmt.Fprintln(w, "Setup Your Shop")
		fmt.Fprintln(w, "  You need to create a shop profile first: doemart shop create --help")
		return
	}

	s := v.Shop
	fmt.Fprintf(w, "%s (%s)\n", s.ShopName, s.ShopType)
	fmt.Fprintf(w, "  %s, %s, %s %s\n", s.Address, s.City, s.State, s.Pincode)
	fmt.Fprintf(w, "  Phone: %s  Rating: %.1f  Active: %t\n", s.Phone, s.Rating, s.IsActive)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Products (%d)\n", len(v.Products))
	renderProducts(w, v.Products)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Orders (%d)\n", len(v.Orders))
	renderOrders(w, v.Orders)
}

func renderBrowse(w io.Writer, shops []models.Shop, products []models.Product, orders []models.Order) {
	fmt.Fprintf(w, "Shops (%d)\n", len(shops))
	if len(shops) == 0 {
		fmt.Fprintln(w, "  No shops match")
	} else {
		tw := newTable(w, "SHOP", "TYPE", "CITY", "RATING", "PHONE")
		for _, s := range shops {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%s\n", s.ShopName, s.ShopType, s.City, s.Rating, s.Phone)
		}
		tw.Flush()
	}
	fmt.Fprintln(w)

	if len(products) > dashboard.FeaturedProducts {
		products = products[:dashboard.FeaturedProducts]
	}
	fmt.Fprintf(w, "Products (%d)\n", len(products))
	renderProducts(w, products)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "My Orders (%d)\n", len(orders))
	renderOrders(w, orders)
}

package dashboard

import (
	"strings"

	"github.com/matthieukhl/doemart/internal/models"
)

// Filter is the user dashboard search form; empty fields match everything
type Filter struct {
	Query    string `form:"q" json:"q"`
	City     string `form:"city" json:"city"`
	Category string `form:"category" json:"category"`
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// FilterShops keeps shops whose name or description contains query and whose city equals city
func FilterShops(shops []models.Shop, query, city string) []models.Shop {
	out := make([]models.Shop, 0, len(shops))
	for _, shop := range shops {
		if !containsFold(shop.ShopName, query) && !containsFold(shop.Description, query) {
			continue
		}
		if city != "" && shop.City != city {
			continue
		}
		out = append(out, shop)
	}
	return out
}

// FilterProducts keeps products whose name or description contains query and whose category equals category
func FilterProducts(products []models.Product, query, category string) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if !containsFold(p.Name, query) && !containsFold(p.Description, query) {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		out = append(out, p)
	}
	return out
}

func distinct[T any](items []T, key func(T) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		k := key(item)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// Cities lists shop cities in first-seen order
func Cities(shops []models.Shop) []string {
	return distinct(shops, func(s models.Shop) string { return s.City })
}

// Categories lists product categories in first-seen order
func Categories(products []models.Product) []string {
	return distinct(products, func(p models.Product) string { return p.Category })
}

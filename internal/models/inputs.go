package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInvalidInput is wrapped by every validation failure
var ErrInvalidInput = errors.New("invalid input")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// ProfileInput carries the profile fields collected at registration
type ProfileInput struct {
	ID       uuid.UUID     `json:"id"`
	Email    string        `json:"email"`
	FullName string        `json:"full_name"`
	Phone    string        `json:"phone,omitempty"`
	Address  string        `json:"address,omitempty"`
	Role     Role          `json:"role"`
	Status   AccountStatus `json:"status"`
}

func (in ProfileInput) Validate() error {
	if strings.TrimSpace(in.FullName) == "" {
		return invalid("full name is required")
	}
	if !in.Role.Valid() {
		return invalid("unknown role %q", in.Role)
	}
	return nil
}

// ShopInput is the shop creation form
type ShopInput struct {
	ShopkeeperID uuid.UUID `json:"shopkeeper_id"`
	ShopName     string    `json:"shop_name"`
	ShopType     ShopType  `json:"shop_type"`
	Description  string    `json:"description,omitempty"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Pincode      string    `json:"pincode"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email,omitempty"`
	OpeningHours string    `json:"opening_hours,omitempty"`
	IsActive     bool      `json:"is_active"`
}

func (in ShopInput) Validate() error {
	required := map[string]string{
		"shop_name": in.ShopName,
		"address":   in.Address,
		"city":      in.City,
		"state":     in.State,
		"pincode":   in.Pincode,
		"phone":     in.Phone,
	}
	for _, field := range []string{"shop_name", "address", "city", "state", "pincode", "phone"} {
		if strings.TrimSpace(required[field]) == "" {
			return invalid("%s is required", field)
		}
	}
	if !in.ShopType.Valid() {
		return invalid("unknown shop type %q", in.ShopType)
	}
	return nil
}

// ProductInput is the product creation form
type ProductInput struct {
	ShopID             uuid.UUID       `json:"shop_id"`
	Name               string          `json:"name"`
	Description        string          `json:"description,omitempty"`
	Category           string          `json:"category"`
	Price              decimal.Decimal `json:"price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	FinalPrice         decimal.Decimal `json:"final_price"`
	Quantity           int             `json:"quantity"`
	Unit               string          `json:"unit"`
	ImageURL           string          `json:"image_url,omitempty"`
	IsAvailable        bool            `json:"is_available"`
}

func (in ProductInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		return invalid("category is required")
	}
	if strings.TrimSpace(in.Unit) == "" {
		return invalid("unit is required")
	}
	if in.Price.IsNegative() {
		return invalid("price must not be negative")
	}
	if in.DiscountPercentage.IsNegative() || in.DiscountPercentage.GreaterThan(hundred) {
		return invalid("discount percentage must be between 0 and 100")
	}
	if in.Quantity < 0 {
		return invalid("quantity must not be negative")
	}
	return nil
}

// Prepare applies the form defaults and derived fields before insertion.
func (in *ProductInput) Prepare() {
	if in.Unit == "" {
		in.Unit = "piece"
	}
	in.FinalPrice = FinalPrice(in.Price, in.DiscountPercentage)
	in.IsAvailable = in.Quantity > 0
}

func (s *Shop) Validate() error {
	if s.Rating < 0 || s.Rating > 5 {
		return invalid("rating %.1f outside 0-5", s.Rating)
	}
	return nil
}

func (f *Feedback) Validate() error {
	if f.Rating < 1 || f.Rating > 5 {
		return invalid("rating %d outside 1-5", f.Rating)
	}
	return nil
}

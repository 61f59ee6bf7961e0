package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Collection names served by the data backend
const (
	CollectionProfiles   = "profiles"
	CollectionShops      = "shops"
	CollectionProducts   = "products"
	CollectionOrders     = "orders"
	CollectionOrderItems = "order_items"
	CollectionFeedback   = "feedback"
)

// Profile is the account record owned by the identity system
type Profile struct {
	ID         uuid.UUID     `json:"id" db:"id"`
	Email      string        `json:"email" db:"email"`
	FullName   string        `json:"full_name" db:"full_name"`
	Phone      string        `json:"phone,omitempty" db:"phone"`
	Address    string        `json:"address,omitempty" db:"address"`
	Role       Role          `json:"role" db:"role"`
	Status     AccountStatus `json:"status" db:"status"`
	IDProofURL string        `json:"id_proof_url,omitempty" db:"id_proof_url"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at" db:"updated_at"`
}

// Approved reports whether the account may use role-restricted pages
func (p *Profile) Approved() bool {
	return p.Status == StatusApproved
}

// Shop belongs to exactly one shopkeeper profile
type Shop struct {
	ID           uuid.UUID `json:"id" db:"id"`
	ShopkeeperID uuid.UUID `json:"shopkeeper_id" db:"shopkeeper_id"`
	ShopName     string    `json:"shop_name" db:"shop_name"`
	ShopType     ShopType  `json:"shop_type" db:"shop_type"`
	Description  string    `json:"description,omitempty" db:"description"`
	Address      string    `json:"address" db:"address"`
	City         string    `json:"city" db:"city"`
	State        string    `json:"state" db:"state"`
	Pincode      string    `json:"pincode" db:"pincode"`
	Phone        string    `json:"phone" db:"phone"`
	Email        string    `json:"email,omitempty" db:"email"`
	LogoURL      string    `json:"logo_url,omitempty" db:"logo_url"`
	OpeningHours string    `json:"opening_hours,omitempty" db:"opening_hours"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	Rating       float64   `json:"rating" db:"rating"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Product belongs to exactly one shop
type Product struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	ShopID             uuid.UUID       `json:"shop_id" db:"shop_id"`
	Name               string          `json:"name" db:"name"`
	Description        string          `json:"description,omitempty" db:"description"`
	Category           string          `json:"category" db:"category"`
	Price              decimal.Decimal `json:"price" db:"price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage" db:"discount_percentage"`
	FinalPrice         decimal.Decimal `json:"final_price" db:"final_price"`
	Quantity           int             `json:"quantity" db:"quantity"`
	Unit               string          `json:"unit" db:"unit"`
	ImageURL           string          `json:"image_url,omitempty" db:"image_url"`
	IsAvailable        bool            `json:"is_available" db:"is_available"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// Order references one user profile and one shop
type Order struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	UserID        uuid.UUID       `json:"user_id" db:"user_id"`
	ShopID        uuid.UUID       `json:"shop_id" db:"shop_id"`
	OrderType     OrderType       `json:"order_type" db:"order_type"`
	Status        OrderStatus     `json:"status" db:"status"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
	PaymentMethod PaymentMethod   `json:"payment_method" db:"payment_method"`
	PaymentStatus PaymentStatus   `json:"payment_status" db:"payment_status"`
	DeliveryType  DeliveryType    `json:"delivery_type" db:"delivery_type"`
	Notes         string          `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// OrderItem is one line of an order
type OrderItem struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	OrderID    uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID  uuid.UUID       `json:"product_id" db:"product_id"`
	Quantity   int             `json:"quantity" db:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price" db:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price" db:"total_price"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// Feedback is a user's rating of a shop, optionally tied to an order
type Feedback struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	ShopID    uuid.UUID  `json:"shop_id" db:"shop_id"`
	OrderID   *uuid.UUID `json:"order_id,omitempty" db:"order_id"`
	Rating    int        `json:"rating" db:"rating"`
	Comment   string     `json:"comment,omitempty" db:"comment"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

package models

import (
	"encoding/json"
	"fmt"
)

// Role is the account role recorded on a profile
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleShopkeeper Role = "shopkeeper"
	RoleUser       Role = "user"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleShopkeeper, RoleUser:
		return true
	}
	return false
}

func ParseRole(s string) (Role, error) {
	if r := Role(s); r.Valid() {
		return r, nil
	}
	return "", fmt.Errorf("unknown role: %q", s)
}

func (r *Role) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, (*string)(r), "role", func(s string) bool { return Role(s).Valid() })
}

// AccountStatus is the approval state of a profile
type AccountStatus string

const (
	StatusPending  AccountStatus = "pending"
	StatusApproved AccountStatus = "approved"
	StatusRejected AccountStatus = "rejected"
)

func (s AccountStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func ParseAccountStatus(s string) (AccountStatus, error) {
	if st := AccountStatus(s); st.Valid() {
		return st, nil
	}
	return "", fmt.Errorf("unknown account status: %q", s)
}

func (s *AccountStatus) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, (*string)(s), "account status", func(v string) bool { return AccountStatus(v).Valid() })
}

// CanTransition reports whether an admin may move a profile from s to next.
// Only pending profiles are decided.
func (s AccountStatus) CanTransition(next AccountStatus) bool {
	return s == StatusPending && (next == StatusApproved || next == StatusRejected)
}

type ShopType string

const (
	ShopTypeRetail     ShopType = "retail"
	ShopTypeWholesale  ShopType = "wholesale"
	ShopTypeService    ShopType = "service"
	ShopTypeRestaurant ShopType = "restaurant"
	ShopTypeOther      ShopType = "other"
)

func (t ShopType) Valid() bool {
	switch t {
	case ShopTypeRetail, ShopTypeWholesale, ShopTypeService, ShopTypeRestaurant, ShopTypeOther:
		return true
	}
	return false
}

func ParseShopType(s string) (ShopType, error) {
	if t := ShopType(s); t.Valid() {
		return t, nil
	}
	return "", fmt.Errorf("unknown shop type: %q", s)
}

func (t *ShopType) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, (*string)(t), "shop type", func(v string) bool { return ShopType(v).Valid() })
}

type OrderType string

const (
	OrderTypeSpotBilling  OrderType = "spot_billing"
	OrderTypeAdvanceOrder OrderType = "advance_order"
)

func (t OrderType) Valid() bool {
	return t == OrderTypeSpotBilling || t == OrderTypeAdvanceOrder
}

func (t *OrderType) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, (*string)(t), "order type", func(v string) bool { return OrderType(v).Valid() })
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusReady, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

func (s *OrderStatus) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, (*string)(s), "order status", func(v string) bool { return OrderStatus(v).Valid() })
}

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentUPI    PaymentMethod = "upi"
	PaymentOnline PaymentMethod = "online"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentUPI, PaymentOnline:
		return true
	}
	return false
}

func (m *PaymentMethod) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, (*string)(m), "payment method", func(v string) bool { return PaymentMethod(v).Valid() })
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed:
		return true
	}
	return false
}

func (s *PaymentStatus) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, (*string)(s), "payment status", func(v string) bool { return PaymentStatus(v).Valid() })
}

type DeliveryType string

const (
	DeliveryPickup   DeliveryType = "pickup"
	DeliveryDelivery DeliveryType = "delivery"
)

func (d DeliveryType) Valid() bool {
	return d == DeliveryPickup || d == DeliveryDelivery
}

func (d *DeliveryType) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, (*string)(d), "delivery type", func(v string) bool { return DeliveryType(v).Valid() })
}

// unmarshalEnum decodes a JSON string into dst, rejecting values outside the enumeration.
// A JSON null leaves dst untouched.
func unmarshalEnum(b []byte, dst *string, name string, valid func(string) bool) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if !valid(s) {
		return fmt.Errorf("unknown %s: %q", name, s)
	}
	*dst = s
	return nil
}

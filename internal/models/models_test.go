package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalPrice(t *testing.T) {
	tests := []struct {
		price    string
		discount string
		expected string
	}{
		{"100", "20", "80"},
		{"100", "0", "100"},
		{"100", "100", "0"},
		{"49.99", "10", "44.99"},
		{"0", "50", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.price+"/"+tt.discount, func(t *testing.T) {
			got := FinalPrice(decimal.RequireFromString(tt.price), decimal.RequireFromString(tt.discount))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)), "got %s", got)
		})
	}
}

func TestLineTotal(t *testing.T) {
	got := LineTotal(decimal.RequireFromString("12.50"), 3)
	assert.True(t, got.Equal(decimal.RequireFromString("37.5")), "got %s", got)
}

func TestProductDeriveKeepsBackendValue(t *testing.T) {
	p := Product{
		Price:              decimal.NewFromInt(100),
		DiscountPercentage: decimal.NewFromInt(20),
	}
	p.Derive()
	assert.True(t, p.FinalPrice.Equal(decimal.NewFromInt(80)))

	supplied := Product{
		Price:              decimal.NewFromInt(100),
		DiscountPercentage: decimal.NewFromInt(20),
		FinalPrice:         decimal.NewFromInt(79),
	}
	supplied.Derive()
	assert.True(t, supplied.FinalPrice.Equal(decimal.NewFromInt(79)))
}

func TestOrderItemDerive(t *testing.T) {
	item := OrderItem{UnitPrice: decimal.NewFromInt(15), Quantity: 4}
	item.Derive()
	assert.True(t, item.TotalPrice.Equal(decimal.NewFromInt(60)))
}

func TestProfileDecodeRejectsUnknownRole(t *testing.T) {
	var p Profile
	err := json.Unmarshal([]byte(`{"id":"6f1c8a8e-5a8e-4a53-9a57-0c1f4a9d3b11","role":"superuser","status":"approved"}`), &p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown role")
}

func TestProfileDecode(t *testing.T) {
	var p Profile
	err := json.Unmarshal([]byte(`{
		"id":"6f1c8a8e-5a8e-4a53-9a57-0c1f4a9d3b11",
		"email":"asha@example.com",
		"full_name":"Asha Patil",
		"role":"shopkeeper",
		"status":"pending",
		"phone":null,
		"created_at":"2024-05-01T10:00:00.123456+00:00"
	}`), &p)
	require.NoError(t, err)
	assert.Equal(t, RoleShopkeeper, p.Role)
	assert.Equal(t, StatusPending, p.Status)
	assert.False(t, p.Approved())
	assert.Equal(t, 2024, p.CreatedAt.Year())
}

func TestProductDecodeNumericForms(t *testing.T) {
	var p Product
	err := json.Unmarshal([]byte(`{"price":100,"discount_percentage":"20","final_price":80.00,"quantity":3}`), &p)
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(100)))
	assert.True(t, p.DiscountPercentage.Equal(decimal.NewFromInt(20)))
	assert.True(t, p.FinalPrice.Equal(decimal.NewFromInt(80)))
}

func TestParseEnums(t *testing.T) {
	r, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	_, err = ParseRole("root")
	assert.Error(t, err)

	s, err := ParseAccountStatus("rejected")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, s)

	_, err = ParseShopType("kiosk")
	assert.Error(t, err)
}

func TestAccountStatusTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransition(StatusApproved))
	assert.True(t, StatusPending.CanTransition(StatusRejected))
	assert.False(t, StatusApproved.CanTransition(StatusRejected))
	assert.False(t, StatusRejected.CanTransition(StatusApproved))
	assert.False(t, StatusPending.CanTransition(StatusPending))
}

func TestProductInputValidate(t *testing.T) {
	valid := ProductInput{
		Name:               "Basmati Rice",
		Category:           "grocery",
		Unit:               "kg",
		Price:              decimal.NewFromInt(120),
		DiscountPercentage: decimal.NewFromInt(5),
		Quantity:           10,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(in *ProductInput)
	}{
		{"missing name", func(in *ProductInput) { in.Name = " " }},
		{"negative price", func(in *ProductInput) { in.Price = decimal.NewFromInt(-1) }},
		{"discount over 100", func(in *ProductInput) { in.DiscountPercentage = decimal.NewFromInt(101) }},
		{"negative quantity", func(in *ProductInput) { in.Quantity = -2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			assert.ErrorIs(t, in.Validate(), ErrInvalidInput)
		})
	}
}

func TestProductInputPrepare(t *testing.T) {
	in := ProductInput{Price: decimal.NewFromInt(100), DiscountPercentage: decimal.NewFromInt(20)}
	in.Prepare()
	assert.Equal(t, "piece", in.Unit)
	assert.True(t, in.FinalPrice.Equal(decimal.NewFromInt(80)))
	assert.False(t, in.IsAvailable)
}

func TestShopInputValidate(t *testing.T) {
	in := ShopInput{
		ShopName: "Green Mart",
		ShopType: ShopTypeRetail,
		Address:  "12 FC Road",
		City:     "Pune",
		State:    "Maharashtra",
		Pincode:  "411004",
		Phone:    "9800000000",
	}
	require.NoError(t, in.Validate())

	in.ShopType = "kiosk"
	assert.ErrorIs(t, in.Validate(), ErrInvalidInput)

	in.ShopType = ShopTypeRetail
	in.City = ""
	assert.ErrorIs(t, in.Validate(), ErrInvalidInput)
}

func TestRatingBounds(t *testing.T) {
	assert.Error(t, (&Feedback{Rating: 0}).Validate())
	assert.NoError(t, (&Feedback{Rating: 5}).Validate())
	assert.Error(t, (&Shop{Rating: 5.5}).Validate())
	assert.NoError(t, (&Shop{Rating: 4.2}).Validate())
}

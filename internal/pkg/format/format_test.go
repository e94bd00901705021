package format

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestGetStockStatus(t *testing.T) {
	tests := []struct {
		stock int
		want  StockStatus
	}{
		{0, OutOfStock},
		{1, LowStock},
		{5, LowStock},
		{10, LowStock},
		{11, InStock},
		{250, InStock},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GetStockStatus(tt.stock), "stock=%d", tt.stock)
	}
}

func TestDiscountedPrice(t *testing.T) {
	price := decimal.RequireFromString("200")

	assert.True(t, DiscountedPrice(price, decimal.Zero).Equal(price))
	assert.True(t, DiscountedPrice(price, decimal.NewFromInt(25)).Equal(decimal.NewFromInt(150)))
	assert.True(t, DiscountedPrice(price, decimal.NewFromInt(100)).IsZero())

	// p * (1 - pct/100)
	p := decimal.RequireFromString("9.99")
	pct := decimal.RequireFromString("7.17")
	want := p.Mul(decimal.NewFromInt(1).Sub(pct.Div(decimal.NewFromInt(100))))
	assert.True(t, DiscountedPrice(p, pct).Equal(want))

	// negative percentages are passed through
	assert.True(t, DiscountedPrice(price, decimal.NewFromInt(-10)).Equal(decimal.NewFromInt(220)))
}

func countTrue(flags []bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

func TestStarRating(t *testing.T) {
	tests := []struct {
		rating float64
		want   int
	}{
		{4.6, 5},
		{4.5, 5},
		{4.49, 4},
		{3.4, 3},
		{2.5, 3},
		{0.49, 0},
		{0, 0},
		{5, 5},
	}

	for _, tt := range tests {
		stars := StarRating(tt.rating)
		assert.Len(t, stars, 5)
		assert.Equal(t, tt.want, countTrue(stars), "rating=%v", tt.rating)
	}

	stars := StarRating(3.4)
	assert.Equal(t, []bool{true, true, true, false, false}, stars)
	assert.Equal(t, "★★★☆☆", Stars(3.4))
}

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"9.99", "$9.99"},
		{"1234.5", "$1,234.50"},
		{"1234567.891", "$1,234,567.89"},
		{"999.995", "$1,000.00"},
		{"-1", "-$1.00"},
		{"-0.001", "$0.00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Currency(decimal.RequireFromString(tt.in)), tt.in)
	}
}

func TestCategoryName(t *testing.T) {
	assert.Equal(t, "Smartphones", CategoryName("smartphones"))
	assert.Equal(t, "Mens Shirts", CategoryName("mens-shirts"))
	assert.Equal(t, "Home Decoration", CategoryName("home-decoration"))
}

func TestDiscountBadges(t *testing.T) {
	pct := decimal.RequireFromString("12.345")

	assert.Equal(t, "-12.35%", CardDiscountBadge(pct))
	assert.Equal(t, "-12.345% OFF", DetailDiscountBadge(pct))
	assert.Equal(t, "-7.00%", CardDiscountBadge(decimal.NewFromInt(7)))
	assert.Equal(t, "-7% OFF", DetailDiscountBadge(decimal.NewFromInt(7)))
}

func TestRating(t *testing.T) {
	assert.Equal(t, "4.6", Rating(4.56))
	assert.Equal(t, "3.0", Rating(3))
}

func TestStockBadge(t *testing.T) {
	assert.Equal(t, "🟢", StockBadge(InStock))
	assert.Equal(t, "🟡", StockBadge(LowStock))
	assert.Equal(t, "🔴", StockBadge(OutOfStock))
	assert.Equal(t, "⚪", StockBadge(StockStatus("unknown")))
}

// Package format holds the pure derivation and display helpers used by the catalog views.
package format

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// StockStatus availability band of a product
type StockStatus string

const (
	InStock    StockStatus = "In Stock"
	LowStock   StockStatus = "Low Stock"
	OutOfStock StockStatus = "Out of Stock"
)

// lowStockThreshold highest stock count still reported as low
const lowStockThreshold = 10

var hundred = decimal.NewFromInt(100)

// GetStockStatus maps a stock count to its availability band
func GetStockStatus(stock int) StockStatus {
	if stock == 0 {
		return OutOfStock
	}
	if stock <= lowStockThreshold {
		return LowStock
	}
	return InStock
}

// StockBadge short marker shown next to the status text
func StockBadge(status StockStatus) string {
	switch status {
	case InStock:
		return "🟢"
	case LowStock:
		return "🟡"
	case OutOfStock:
		return "🔴"
	default:
		return "⚪"
	}
}

// DiscountedPrice price minus pct percent of it. Negative pct is not clamped.
func DiscountedPrice(price, pct decimal.Decimal) decimal.Decimal {
	return price.Sub(price.Mul(pct).Div(hundred))
}

// StarRating five flags, the first round(rating) of them set
func StarRating(rating float64) []bool {
	filled := int(math.Floor(rating + 0.5))
	stars := make([]bool, 5)
	for i := range stars {
		stars[i] = i < filled
	}
	return stars
}

// Stars renders StarRating as text
func Stars(rating float64) string {
	var sb strings.Builder
	for _, on := range StarRating(rating) {
		if on {
			sb.WriteString("★")
		} else {
			sb.WriteString("☆")
		}
	}
	return sb.String()
}

// Rating one decimal place, e.g. "4.6"
func Rating(rating float64) string {
	return strconv.FormatFloat(rating, 'f', 1, 64)
}

// Currency USD amount with grouping and two decimals
// Example: 1234.5 -> "$1,234.50"
func Currency(amount decimal.Decimal) string {
	d := amount.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	parts := strings.SplitN(d.StringFixed(2), ".", 2)
	intPart := parts[0]

	var sb strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteRune(',')
		}
		sb.WriteRune(c)
	}

	return sign + "$" + sb.String() + "." + parts[1]
}

// CategoryName turns a slug into a display name: "mens-shirts" -> "Mens Shirts"
func CategoryName(slug string) string {
	caser := cases.Title(language.English)
	return caser.String(strings.ReplaceAll(slug, "-", " "))
}

// CardDiscountBadge discount badge of a product card, two decimals
func CardDiscountBadge(pct decimal.Decimal) string {
	return "-" + pct.StringFixed(2) + "%"
}

// DetailDiscountBadge discount badge of the detail view, raw percentage
func DetailDiscountBadge(pct decimal.Decimal) string {
	return "-" + pct.String() + "% OFF"
}

package entity

import "github.com/shopspring/decimal"

// CartStorageKey local storage slot holding the serialized cart
const CartStorageKey = "product-dashboard-cart"

// CartEntry product identifier with a positive quantity
type CartEntry struct {
	ProductID int
	Quantity  int
}

// CartLine cart entry resolved against its product
type CartLine struct {
	Product   Product
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CategoryAll is the sentinel category meaning "no category filter"
const CategoryAll = "all"

// Dimensions physical size of a product
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

// Review a single customer review of a product
type Review struct {
	Rating        int       `json:"rating" validate:"gte=0,lte=5"`
	Comment       string    `json:"comment"`
	Date          time.Time `json:"date"`
	ReviewerName  string    `json:"reviewerName"`
	ReviewerEmail string    `json:"reviewerEmail"`
}

// Product catalog entity as served by the remote catalog API
type Product struct {
	ID                   int             `json:"id" validate:"gt=0"`
	Title                string          `json:"title" validate:"required"`
	Description          string          `json:"description"`
	Category             string          `json:"category"`
	Price                decimal.Decimal `json:"price" validate:"gte=0"`
	DiscountPercentage   decimal.Decimal `json:"discountPercentage" validate:"gte=0,lte=100"`
	Rating               float64         `json:"rating" validate:"gte=0,lte=5"`
	Stock                int             `json:"stock" validate:"gte=0"`
	Tags                 []string        `json:"tags"`
	Brand                string          `json:"brand"`
	SKU                  string          `json:"sku"`
	Weight               float64         `json:"weight"`
	Dimensions           Dimensions      `json:"dimensions"`
	WarrantyInformation  string          `json:"warrantyInformation"`
	ShippingInformation  string          `json:"shippingInformation"`
	AvailabilityStatus   string          `json:"availabilityStatus"`
	Reviews              []Review        `json:"reviews" validate:"dive"`
	ReturnPolicy         string          `json:"returnPolicy"`
	MinimumOrderQuantity int             `json:"minimumOrderQuantity"`
	Images               []string        `json:"images"`
	Thumbnail            string          `json:"thumbnail"`
}

// ProductsResponse one page of products plus the server-side count over the current filter
type ProductsResponse struct {
	Products []Product `json:"products" validate:"dive"`
	Total    int       `json:"total" validate:"gte=0"`
	Skip     int       `json:"skip" validate:"gte=0"`
	Limit    int       `json:"limit" validate:"gte=0"`
}

// Category remote category record
type Category struct {
	Slug string `json:"slug" validate:"required"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// SortField supported sort fields
type SortField string

const (
	SortNone   SortField = ""
	SortPrice  SortField = "price"
	SortTitle  SortField = "title"
	SortRating SortField = "rating"
)

// Valid reports whether f is empty or one of the supported fields
func (f SortField) Valid() bool {
	switch f {
	case SortNone, SortPrice, SortTitle, SortRating:
		return true
	}
	return false
}

// SortOrder sort direction
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// Valid reports whether o is asc or desc
func (o SortOrder) Valid() bool {
	return o == OrderAsc || o == OrderDesc
}

// ProductFilters fetch parameters for a product listing
type ProductFilters struct {
	Search   string
	Category string
	SortBy   SortField
	Order    SortOrder
	Limit    int
	Skip     int
}

// QueryState filter, sort and page state of the catalog view
type QueryState struct {
	Page        int
	SearchQuery string
	Category    string
	SortBy      SortField
	Order       SortOrder
}

// DefaultQueryState first page, no filters, ascending
func DefaultQueryState() QueryState {
	return QueryState{
		Page:     1,
		Category: CategoryAll,
		Order:    OrderAsc,
	}
}

// Filters derives the fetch parameters for the given page size
func (q QueryState) Filters(pageSize int) ProductFilters {
	return ProductFilters{
		Search:   q.SearchQuery,
		Category: q.Category,
		SortBy:   q.SortBy,
		Order:    q.Order,
		Limit:    pageSize,
		Skip:     (q.Page - 1) * pageSize,
	}
}

// CacheKey the full tuple of filter, sort and page values
func (q QueryState) CacheKey() string {
	return fmt.Sprintf("products:%d:%s:%s:%s:%s",
		q.Page, strings.TrimSpace(q.SearchQuery), q.Category, q.SortBy, q.Order)
}

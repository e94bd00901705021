package repository

import (
	"context"

	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/domain/entity"
)

// CatalogRepository remote product catalog
type CatalogRepository interface {
	// FetchProducts one page of products for the given filters
	FetchProducts(ctx context.Context, filters entity.ProductFilters) (*entity.ProductsResponse, error)

	// FetchProductsByCategory one page of a category, without sorting
	FetchProductsByCategory(ctx context.Context, category string, limit, skip int) (*entity.ProductsResponse, error)

	// FetchProductByID a single product
	FetchProductByID(ctx context.Context, id int) (*entity.Product, error)

	// FetchCategories category slugs
	FetchCategories(ctx context.Context) ([]string, error)
}

package repository

import (
	"context"

	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/domain/entity"
)

// CartExporter renders cart lines into a downloadable document
type CartExporter interface {
	// ExportCart returns the encoded document
	ExportCart(ctx context.Context, lines []entity.CartLine) ([]byte, error)
}

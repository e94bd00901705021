package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/domain/entity"
	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/domain/repository"
	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/pkg/format"
)

// CartUseCase the shopping cart, persisted to local storage on every change
type CartUseCase interface {
	// AddToCart adds quantity of product, incrementing an existing entry
	AddToCart(ctx context.Context, product entity.Product, quantity int) error

	// RemoveFromCart drops the entry for productID
	RemoveFromCart(ctx context.Context, productID int) error

	// UpdateQuantity sets the quantity; zero or less removes the entry
	UpdateQuantity(ctx context.Context, productID, quantity int) error

	// ClearCart empties the cart
	ClearCart(ctx context.Context) error

	// GetCartCount sum of quantities
	GetCartCount() int

	// GetCartTotal sum of quantity times discounted unit price
	GetCartTotal(ctx context.Context) (decimal.Decimal, error)

	// Items cart lines resolved against their products, ordered by product id
	Items(ctx context.Context) ([]entity.CartLine, error)

	// Entries raw entries ordered by product id
	Entries() []entity.CartEntry
}

type cartUseCase struct {
	storage     repository.LocalStorage
	catalogRepo repository.CatalogRepository
	logger      *zap.Logger

	mu       sync.Mutex
	items    map[int]int
	products map[int]entity.Product
}

// NewCartUseCase creates the cart and hydrates it from storage.
// A corrupt stored payload is discarded and the cart starts empty.
func NewCartUseCase(
	ctx context.Context,
	storage repository.LocalStorage,
	catalogRepo repository.CatalogRepository,
	logger *zap.Logger,
) (CartUseCase, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	u := &cartUseCase{
		storage:     storage,
		catalogRepo: catalogRepo,
		logger:      logger.Named("cart"),
		items:       make(map[int]int),
		products:    make(map[int]entity.Product),
	}

	if err := u.hydrate(ctx); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *cartUseCase) hydrate(ctx context.Context) error {
	raw, ok, err := u.storage.GetItem(ctx, entity.CartStorageKey)
	if err != nil {
		return fmt.Errorf("failed to read cart: %w", err)
	}
	if !ok {
		return nil
	}

	items, err := decodeCart(raw)
	if err != nil {
		u.logger.Warn("discarding stored cart", zap.Error(err))
		if err := u.storage.RemoveItem(ctx, entity.CartStorageKey); err != nil {
			u.logger.Warn("failed to remove stored cart", zap.Error(err))
		}
		return nil
	}

	u.items = items
	return nil
}

// decodeCart parses {"<id>": quantity}; every key must be a positive id and every quantity positive
func decodeCart(raw string) (map[int]int, error) {
	var stored map[string]int
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrStorageCorrupt, err)
	}

	items := make(map[int]int, len(stored))
	for key, qty := range stored {
		id, err := strconv.Atoi(key)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: bad product id %q", entity.ErrStorageCorrupt, key)
		}
		if qty <= 0 {
			return nil, fmt.Errorf("%w: bad quantity %d for product %d", entity.ErrStorageCorrupt, qty, id)
		}
		items[id] = qty
	}
	return items, nil
}

// persistLocked writes the whole cart; u.mu must be held
func (u *cartUseCase) persistLocked(ctx context.Context) error {
	stored := make(map[string]int, len(u.items))
	for id, qty := range u.items {
		stored[strconv.Itoa(id)] = qty
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := u.storage.SetItem(ctx, entity.CartStorageKey, string(data)); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// mutate applies change and persists it, restoring the previous quantity if the write fails
func (u *cartUseCase) mutate(ctx context.Context, productID int, change func(current int) int) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	prev, had := u.items[productID]
	next := change(prev)
	if next > 0 {
		u.items[productID] = next
	} else {
		delete(u.items, productID)
	}

	if err := u.persistLocked(ctx); err != nil {
		if had {
			u.items[productID] = prev
		} else {
			delete(u.items, productID)
		}
		return err
	}
	return nil
}

// AddToCart adds quantity of product
func (u *cartUseCase) AddToCart(ctx context.Context, product entity.Product, quantity int) error {
	if product.ID <= 0 {
		return fmt.Errorf("%w: product id must be positive", entity.ErrValidation)
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be a positive integer, got %d", entity.ErrValidation, quantity)
	}

	if err := u.mutate(ctx, product.ID, func(current int) int { return current + quantity }); err != nil {
		return err
	}

	u.mu.Lock()
	u.products[product.ID] = product
	u.mu.Unlock()
	return nil
}

// RemoveFromCart drops productID
func (u *cartUseCase) RemoveFromCart(ctx context.Context, productID int) error {
	return u.mutate(ctx, productID, func(int) int { return 0 })
}

// UpdateQuantity sets the quantity of an entry
func (u *cartUseCase) UpdateQuantity(ctx context.Context, productID, quantity int) error {
	return u.mutate(ctx, productID, func(int) int { return quantity })
}

// ClearCart empties the cart
func (u *cartUseCase) ClearCart(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	prev := u.items
	u.items = make(map[int]int)
	if err := u.persistLocked(ctx); err != nil {
		u.items = prev
		return err
	}
	return nil
}

// GetCartCount sum of quantities
func (u *cartUseCase) GetCartCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()

	count := 0
	for _, qty := range u.items {
		count += qty
	}
	return count
}

// GetCartTotal sum of line totals
func (u *cartUseCase) GetCartTotal(ctx context.Context) (decimal.Decimal, error) {
	lines, err := u.Items(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.LineTotal)
	}
	return total, nil
}

// Items resolves every entry; products hydrated from storage are fetched from the catalog
func (u *cartUseCase) Items(ctx context.Context) ([]entity.CartLine, error) {
	entries := u.Entries()

	u.mu.Lock()
	var missing []int
	for _, e := range entries {
		if _, ok := u.products[e.ProductID]; !ok {
			missing = append(missing, e.ProductID)
		}
	}
	u.mu.Unlock()

	for _, id := range missing {
		p, err := u.catalogRepo.FetchProductByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve cart product %d: %w", id, err)
		}
		u.mu.Lock()
		u.products[id] = *p
		u.mu.Unlock()
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	lines := make([]entity.CartLine, 0, len(entries))
	for _, e := range entries {
		p := u.products[e.ProductID]
		unit := format.DiscountedPrice(p.Price, p.DiscountPercentage)
		lines = append(lines, entity.CartLine{
			Product:   p,
			Quantity:  e.Quantity,
			UnitPrice: unit,
			LineTotal: unit.Mul(decimal.NewFromInt(int64(e.Quantity))),
		})
	}
	return lines, nil
}

// Entries raw entries
func (u *cartUseCase) Entries() []entity.CartEntry {
	u.mu.Lock()
	defer u.mu.Unlock()

	entries := make([]entity.CartEntry, 0, len(u.items))
	for id, qty := range u.items {
		entries = append(entries, entity.CartEntry{ProductID: id, Quantity: qty})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ProductID < entries[j].ProductID })
	return entries
}

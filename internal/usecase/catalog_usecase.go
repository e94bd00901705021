package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/domain/entity"
	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/domain/repository"
	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/pkg/debounce"
)

const (
	// PageSize products per catalog page
	PageSize = 12
	// SearchDebounce quiet window before typed search text is committed
	SearchDebounce = 300 * time.Millisecond

	categoriesCacheKey = "categories"
)

// CatalogSnapshot view of the catalog after a fetch was applied
type CatalogSnapshot struct {
	State      entity.QueryState // state the shown result was fetched for
	Products   []entity.Product
	Total      int
	TotalPages int
	Loaded     bool // a successful response has been applied at least once
	Err        error
	Generation uint64
}

// CatalogUseCase filter, sort and page state of the catalog and the fetches it drives
type CatalogUseCase interface {
	// SetSearch commits search text and goes back to page 1
	SetSearch(query string)

	// SearchInput debounced SetSearch for keystroke-level input
	SearchInput(query string)

	// SetCategory selects a category slug (or entity.CategoryAll) and goes back to page 1
	SetCategory(slug string)

	// SetSort sets field and order and goes back to page 1
	SetSort(field entity.SortField, order entity.SortOrder) error

	// SetPage moves to page n, which must be within [1, TotalPages]
	SetPage(n int) error

	// Refresh re-issues the fetch for the current state
	Refresh()

	// State current query state
	State() entity.QueryState

	// Filters fetch parameters derived from the current state
	Filters() entity.ProductFilters

	// TotalPages page count from the latest successful response, 0 before one arrives
	TotalPages() int

	// ResultRange first and last position shown and the total count
	ResultRange() (first, last, total int)

	// Snapshot current view
	Snapshot() CatalogSnapshot

	// Updates receives every applied snapshot; only the latest is kept when the reader lags
	Updates() <-chan CatalogSnapshot

	// Categories category slugs
	Categories(ctx context.Context) ([]string, error)

	// Product a single product for the detail view
	Product(ctx context.Context, id int) (*entity.Product, error)

	// Close cancels in-flight fetches and pending searches
	Close()
}

type catalogUseCase struct {
	catalogRepo repository.CatalogRepository
	cache       repository.QueryCache
	cacheTTL    time.Duration
	logger      *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	group  singleflight.Group
	search *debounce.Debouncer[string]

	mu         sync.Mutex
	state      entity.QueryState
	shown      entity.QueryState
	generation uint64
	response   *entity.ProductsResponse
	err        error
	updates    chan CatalogSnapshot
}

// NewCatalogUseCase creates the controller; a nil cache disables result caching
func NewCatalogUseCase(
	catalogRepo repository.CatalogRepository,
	cache repository.QueryCache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) CatalogUseCase {
	if cache == nil {
		cache = noCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	u := &catalogUseCase{
		catalogRepo: catalogRepo,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger.Named("catalog"),
		ctx:         ctx,
		cancel:      cancel,
		state:       entity.DefaultQueryState(),
		shown:       entity.DefaultQueryState(),
		updates:     make(chan CatalogSnapshot, 1),
	}
	u.search = debounce.New(SearchDebounce, u.SetSearch)
	return u
}

// SetSearch commits search text
func (u *catalogUseCase) SetSearch(query string) {
	u.update(func(s *entity.QueryState) {
		s.SearchQuery = query
		s.Page = 1
	})
}

// SearchInput schedules SetSearch after the debounce window
func (u *catalogUseCase) SearchInput(query string) {
	u.search.Call(query)
}

// SetCategory selects a category
func (u *catalogUseCase) SetCategory(slug string) {
	if strings.TrimSpace(slug) == "" {
		slug = entity.CategoryAll
	}
	u.update(func(s *entity.QueryState) {
		s.Category = slug
		s.Page = 1
	})
}

// SetSort sets sort field and order
func (u *catalogUseCase) SetSort(field entity.SortField, order entity.SortOrder) error {
	if !field.Valid() {
		return fmt.Errorf("%w: unsupported sort field %q", entity.ErrValidation, field)
	}
	if order == "" {
		order = entity.OrderAsc
	}
	if !order.Valid() {
		return fmt.Errorf("%w: unsupported order %q", entity.ErrValidation, order)
	}
	u.update(func(s *entity.QueryState) {
		s.SortBy = field
		s.Order = order
		s.Page = 1
	})
	return nil
}

// SetPage moves to page n
func (u *catalogUseCase) SetPage(n int) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	totalPages := u.totalPagesLocked()
	if n < 1 || n > totalPages {
		return fmt.Errorf("%w: page %d outside [1, %d]", entity.ErrValidation, n, totalPages)
	}
	if n == u.state.Page {
		return nil
	}
	u.state.Page = n
	u.startFetchLocked()
	return nil
}

// Refresh re-issues the current fetch
func (u *catalogUseCase) Refresh() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.startFetchLocked()
}

// update applies mutate and refetches if the state actually changed
func (u *catalogUseCase) update(mutate func(s *entity.QueryState)) {
	u.mu.Lock()
	defer u.mu.Unlock()

	next := u.state
	mutate(&next)
	if next == u.state {
		return
	}
	u.state = next
	u.startFetchLocked()
}

// startFetchLocked bumps the generation and fetches the current state; u.mu must be held
func (u *catalogUseCase) startFetchLocked() {
	if u.ctx.Err() != nil {
		return
	}
	u.generation++
	gen := u.generation
	state := u.state

	u.wg.Add(1)
	go func() {
		defer u.wg.Done()
		resp, err := u.fetchProducts(u.ctx, state)
		u.apply(gen, state, resp, err)
	}()
}

// fetchProducts cache first, then one shared request per cache key
func (u *catalogUseCase) fetchProducts(ctx context.Context, state entity.QueryState) (*entity.ProductsResponse, error) {
	key := state.CacheKey()

	var cached entity.ProductsResponse
	hit, err := u.cache.Get(ctx, key, &cached)
	if err != nil {
		u.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}
	if hit {
		u.logger.Debug("cache hit", zap.String("key", key))
		return &cached, nil
	}

	v, err, shared := u.group.Do(key, func() (any, error) {
		resp, err := u.catalogRepo.FetchProducts(ctx, state.Filters(PageSize))
		if err != nil {
			return nil, err
		}
		if err := u.cache.Set(ctx, key, resp, u.cacheTTL); err != nil {
			u.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		u.logger.Debug("joined in-flight request", zap.String("key", key))
	}
	return v.(*entity.ProductsResponse), nil
}

// apply stores a result unless a newer state superseded it
func (u *catalogUseCase) apply(gen uint64, state entity.QueryState, resp *entity.ProductsResponse, err error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if gen != u.generation {
		u.logger.Debug("discarding stale response",
			zap.Uint64("generation", gen),
			zap.Uint64("current", u.generation),
			zap.String("key", state.CacheKey()),
		)
		return
	}

	u.shown = state
	if err != nil {
		u.err = err
		u.logger.Error("failed to load products", zap.String("key", state.CacheKey()), zap.Error(err))
	} else {
		u.response = resp
		u.err = nil
	}
	u.publishLocked(u.snapshotLocked())
}

// publishLocked latest-wins delivery; u.mu must be held so snapshots leave in order
func (u *catalogUseCase) publishLocked(snap CatalogSnapshot) {
	for {
		select {
		case u.updates <- snap:
			return
		default:
		}
		select {
		case <-u.updates:
		default:
		}
	}
}

func (u *catalogUseCase) totalPagesLocked() int {
	if u.response == nil {
		return 0
	}
	return (u.response.Total + PageSize - 1) / PageSize
}

func (u *catalogUseCase) snapshotLocked() CatalogSnapshot {
	snap := CatalogSnapshot{
		State:      u.shown,
		TotalPages: u.totalPagesLocked(),
		Loaded:     u.response != nil,
		Err:        u.err,
		Generation: u.generation,
	}
	if u.response != nil {
		snap.Products = u.response.Products
		snap.Total = u.response.Total
	}
	return snap
}

// State current query state
func (u *catalogUseCase) State() entity.QueryState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// Filters derived fetch parameters
func (u *catalogUseCase) Filters() entity.ProductFilters {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state.Filters(PageSize)
}

// TotalPages page count
func (u *catalogUseCase) TotalPages() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.totalPagesLocked()
}

// ResultRange "Showing first - last of total"
func (u *catalogUseCase) ResultRange() (first, last, total int) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.response == nil || u.response.Total == 0 {
		return 0, 0, 0
	}
	total = u.response.Total
	first = (u.shown.Page-1)*PageSize + 1
	last = min(u.shown.Page*PageSize, total)
	return first, last, total
}

// Snapshot current view
func (u *catalogUseCase) Snapshot() CatalogSnapshot {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.snapshotLocked()
}

// Updates applied snapshots
func (u *catalogUseCase) Updates() <-chan CatalogSnapshot {
	return u.updates
}

// Categories category slugs, cached
func (u *catalogUseCase) Categories(ctx context.Context) ([]string, error) {
	var slugs []string
	if hit, _ := u.cache.Get(ctx, categoriesCacheKey, &slugs); hit {
		return slugs, nil
	}

	v, err, _ := u.group.Do(categoriesCacheKey, func() (any, error) {
		slugs, err := u.catalogRepo.FetchCategories(ctx)
		if err != nil {
			return nil, err
		}
		if err := u.cache.Set(ctx, categoriesCacheKey, slugs, u.cacheTTL); err != nil {
			u.logger.Warn("cache write failed", zap.String("key", categoriesCacheKey), zap.Error(err))
		}
		return slugs, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return v.([]string), nil
}

// Product a single product, cached
func (u *catalogUseCase) Product(ctx context.Context, id int) (*entity.Product, error) {
	key := "product:" + strconv.Itoa(id)

	var cached entity.Product
	if hit, _ := u.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	v, err, _ := u.group.Do(key, func() (any, error) {
		p, err := u.catalogRepo.FetchProductByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := u.cache.Set(ctx, key, p, u.cacheTTL); err != nil {
			u.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
		return p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load product %d: %w", id, err)
	}
	return v.(*entity.Product), nil
}

// Close stops pending work
func (u *catalogUseCase) Close() {
	u.search.Stop()

	// under the lock so no fetch starts after cancellation
	u.mu.Lock()
	u.cancel()
	u.mu.Unlock()

	u.wg.Wait()
}

// noCache QueryCache that never hits
type noCache struct{}

func (noCache) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (noCache) Set(context.Context, string, any, time.Duration) error { return nil }
func (noCache) Delete(context.Context, string) error                  { return nil }

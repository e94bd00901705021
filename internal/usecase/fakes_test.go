package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/domain/entity"
)

// fakeCatalog records every fetch; a gate registered for a search or category blocks that fetch until released
type fakeCatalog struct {
	mu       sync.Mutex
	total    int
	calls    []entity.ProductFilters
	byID     map[int]entity.Product
	idCalls  int
	catCalls int
	gates    map[string]chan struct{}
	err      error
}

func newFakeCatalog(total int) *fakeCatalog {
	return &fakeCatalog{
		total: total,
		byID:  make(map[int]entity.Product),
		gates: make(map[string]chan struct{}),
	}
}

// gate blocks fetches whose search or category equals key until the returned func runs
func (f *fakeCatalog) gate(key string) func() {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[key] = ch
	f.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func (f *fakeCatalog) FetchProducts(ctx context.Context, filters entity.ProductFilters) (*entity.ProductsResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, filters)
	gate := f.gates[filters.Search]
	if gate == nil {
		gate = f.gates[filters.Category]
	}
	err := f.err
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	label := filters.Category
	if filters.Search != "" {
		label = filters.Search
	}
	return &entity.ProductsResponse{
		Products: []entity.Product{{ID: filters.Skip + 1, Title: label, Price: decimal.NewFromInt(10)}},
		Total:    f.total,
		Skip:     filters.Skip,
		Limit:    filters.Limit,
	}, nil
}

func (f *fakeCatalog) FetchProductsByCategory(ctx context.Context, category string, limit, skip int) (*entity.ProductsResponse, error) {
	return f.FetchProducts(ctx, entity.ProductFilters{Category: category, Limit: limit, Skip: skip})
}

func (f *fakeCatalog) FetchProductByID(ctx context.Context, id int) (*entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.idCalls++
	p, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: product %d", entity.ErrNotFound, id)
	}
	return &p, nil
}

func (f *fakeCatalog) FetchCategories(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.catCalls++
	return []string{"beauty", "smartphones"}, nil
}

func (f *fakeCatalog) recorded() []entity.ProductFilters {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entity.ProductFilters(nil), f.calls...)
}

func (f *fakeCatalog) callsFor(match func(entity.ProductFilters) bool) int {
	n := 0
	for _, c := range f.recorded() {
		if match(c) {
			n++
		}
	}
	return n
}

var errWriteFailed = errors.New("disk full")

// fakeStorage map-backed LocalStorage with switchable write failures
type fakeStorage struct {
	mu        sync.Mutex
	data      map[string]string
	failWrite bool
	removed   []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{data: make(map[string]string)}
}

func (s *fakeStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *fakeStorage) SetItem(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite {
		return errWriteFailed
	}
	s.data[key] = value
	return nil
}

func (s *fakeStorage) RemoveItem(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	s.removed = append(s.removed, key)
	return nil
}

func (s *fakeStorage) value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

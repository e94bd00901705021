// Package dummyjson is the HTTP client for the DummyJSON product catalog API.
package dummyjson

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/domain/entity"
	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/domain/repository"
)

// DefaultBaseURL public DummyJSON endpoint
const DefaultBaseURL = "https://dummyjson.com"

// DefaultPageSize limit used when filters leave it at zero
const DefaultPageSize = 12

// Options client settings
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RateLimit  float64 // requests per second, 0 = unlimited
	HTTPClient *http.Client
}

// Client catalog API client
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	validate   *validator.Validate
	logger     *zap.Logger
}

var _ repository.CatalogRepository = (*Client)(nil)

// NewClient creates a catalog client
func NewClient(opts Options, logger *zap.Logger) (*Client, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    base,
		limiter:    limiter,
		validate:   newValidator(),
		logger:     logger.Named("dummyjson"),
	}, nil
}

// newValidator lets numeric tags apply to decimal fields
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// ProductsURL picks the endpoint for filters: search, then category, then the plain listing.
// Pagination and sort parameters are appended to whichever was chosen.
func (c *Client) ProductsURL(filters entity.ProductFilters) (string, error) {
	if filters.Limit < 0 || filters.Skip < 0 {
		return "", fmt.Errorf("%w: limit and skip must be non-negative", entity.ErrValidation)
	}
	if !filters.SortBy.Valid() {
		return "", fmt.Errorf("%w: unsupported sort field %q", entity.ErrValidation, filters.SortBy)
	}
	order := filters.Order
	if order == "" {
		order = entity.OrderAsc
	}
	if !order.Valid() {
		return "", fmt.Errorf("%w: unsupported order %q", entity.ErrValidation, order)
	}
	limit := filters.Limit
	if limit == 0 {
		limit = DefaultPageSize
	}

	path := "/products"
	params := url.Values{}

	search := strings.TrimSpace(filters.Search)
	switch {
	case search != "":
		path = "/products/search"
		params.Set("q", search)
	case filters.Category != "" && filters.Category != entity.CategoryAll:
		path = "/products/category/" + url.PathEscape(filters.Category)
	}

	params.Set("limit", strconv.Itoa(limit))
	params.Set("skip", strconv.Itoa(filters.Skip))
	if filters.SortBy != entity.SortNone {
		params.Set("sortBy", string(filters.SortBy))
		params.Set("order", string(order))
	}

	return c.baseURL + path + "?" + params.Encode(), nil
}

// FetchProducts one page of products for filters
func (c *Client) FetchProducts(ctx context.Context, filters entity.ProductFilters) (*entity.ProductsResponse, error) {
	u, err := c.ProductsURL(filters)
	if err != nil {
		return nil, err
	}

	var resp entity.ProductsResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return &resp, nil
}

// FetchProductsByCategory one unsorted page of a category
func (c *Client) FetchProductsByCategory(ctx context.Context, category string, limit, skip int) (*entity.ProductsResponse, error) {
	if strings.TrimSpace(category) == "" {
		return nil, fmt.Errorf("%w: category is required", entity.ErrValidation)
	}
	if limit < 0 || skip < 0 {
		return nil, fmt.Errorf("%w: limit and skip must be non-negative", entity.ErrValidation)
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("skip", strconv.Itoa(skip))
	u := c.baseURL + "/products/category/" + url.PathEscape(category) + "?" + params.Encode()

	var resp entity.ProductsResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch products by category: %w", err)
	}
	return &resp, nil
}

// FetchProductByID a single product
func (c *Client) FetchProductByID(ctx context.Context, id int) (*entity.Product, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: product id must be positive", entity.ErrValidation)
	}

	var product entity.Product
	if err := c.getJSON(ctx, c.baseURL+"/products/"+strconv.Itoa(id), &product); err != nil {
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}
	return &product, nil
}

// FetchCategories category slugs; any malformed entry fails the whole call
func (c *Client) FetchCategories(ctx context.Context) ([]string, error) {
	var categories []entity.Category
	if err := c.getJSON(ctx, c.baseURL+"/products/categories", &categories); err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	slugs := make([]string, 0, len(categories))
	for i := range categories {
		if err := c.validate.Struct(&categories[i]); err != nil {
			return nil, fmt.Errorf("failed to fetch categories: %w: entry %d: %v", entity.ErrParse, i, err)
		}
		slugs = append(slugs, categories[i].Slug)
	}
	return slugs, nil
}

// getJSON performs a GET and decodes + validates the body into dest
func (c *Client) getJSON(ctx context.Context, u string, dest any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %w", entity.ErrNetwork, err)
		}
	}

	requestID := uuid.NewString()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("API error", zap.String("url", u), zap.String("request_id", requestID), zap.Error(err))
		return fmt.Errorf("%w: %w", entity.ErrNetwork, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("catalog request",
		zap.String("url", u),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &entity.HTTPError{StatusCode: resp.StatusCode, Status: statusText(resp)}
		c.logger.Error("API error", zap.String("url", u), zap.String("request_id", requestID), zap.Error(httpErr))
		return httpErr
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrParse, err)
	}

	if reflect.Indirect(reflect.ValueOf(dest)).Kind() == reflect.Struct {
		if err := c.validate.Struct(dest); err != nil {
			return fmt.Errorf("%w: %v", entity.ErrParse, err)
		}
	}
	return nil
}

// statusText reason phrase without the numeric code, as browsers expose it
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

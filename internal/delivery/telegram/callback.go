package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/domain/entity"
)

// callback kinds carried in inline button data
const (
	cbPage       = "page"
	cbCategory   = "cat"
	cbSort       = "sort"
	cbAdd        = "add"
	cbView       = "view"
	cbRemove     = "rm"
	cbPrint      = "print"
	cbPrinter    = "printer"
	cbCategories = "cats"
	cbSortMenu   = "sorts"
	cbRetry      = "retry"
	cbCart       = "cart"
	cbExport     = "export"
	cbNoop       = "noop"
)

// sortNone stands in for an empty sort field in callback data
const sortNone = "none"

type callbackAction struct {
	Kind  string
	Page  int
	Slug  string
	Field entity.SortField
	Order entity.SortOrder
	ID    int
	UID   string
}

// parseCallback decodes "kind[:arg[:arg]]" button data
func parseCallback(data string) (callbackAction, error) {
	kind, rest, _ := strings.Cut(data, ":")
	a := callbackAction{Kind: kind}

	switch kind {
	case cbPage:
		n, err := strconv.Atoi(rest)
		if err != nil {
			return a, fmt.Errorf("%w: bad page %q", entity.ErrValidation, rest)
		}
		a.Page = n
	case cbCategory:
		if rest == "" {
			return a, fmt.Errorf("%w: empty category", entity.ErrValidation)
		}
		a.Slug = rest
	case cbSort:
		field, order, ok := strings.Cut(rest, ":")
		if !ok {
			return a, fmt.Errorf("%w: bad sort %q", entity.ErrValidation, rest)
		}
		if field != sortNone {
			a.Field = entity.SortField(field)
		}
		a.Order = entity.SortOrder(order)
	case cbAdd, cbView, cbRemove, cbPrint:
		id, err := strconv.Atoi(rest)
		if err != nil || id <= 0 {
			return a, fmt.Errorf("%w: bad product id %q", entity.ErrValidation, rest)
		}
		a.ID = id
	case cbPrinter:
		if rest == "" {
			return a, fmt.Errorf("%w: empty printer uid", entity.ErrValidation)
		}
		a.UID = rest
	case cbCategories, cbSortMenu, cbRetry, cbCart, cbExport, cbNoop:
	default:
		return a, fmt.Errorf("%w: unknown callback %q", entity.ErrValidation, data)
	}
	return a, nil
}

func pageData(n int) string           { return cbPage + ":" + strconv.Itoa(n) }
func categoryData(slug string) string { return cbCategory + ":" + slug }
func productData(kind string, id int) string {
	return kind + ":" + strconv.Itoa(id)
}

func sortData(field entity.SortField, order entity.SortOrder) string {
	f := string(field)
	if f == "" {
		f = sortNone
	}
	return cbSort + ":" + f + ":" + string(order)
}

package telegram

import (
	"fmt"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"

	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/domain/entity"
	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/pkg/format"
	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/usecase"
)

const (
	buttonTitleLen = 24
	pageWindow     = 5
	maxReviews     = 3
)

type sortOption struct {
	Label string
	Field entity.SortField
	Order entity.SortOrder
}

var sortOptions = []sortOption{
	{"Price: Low to High", entity.SortPrice, entity.OrderAsc},
	{"Price: High to Low", entity.SortPrice, entity.OrderDesc},
	{"Title: A-Z", entity.SortTitle, entity.OrderAsc},
	{"Title: Z-A", entity.SortTitle, entity.OrderDesc},
	{"Rating: Highest First", entity.SortRating, entity.OrderDesc},
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeHTML, s)
}

// truncate shortens s to n runes with an ellipsis
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

// gridHeader the filter summary line above the cards
func gridHeader(state entity.QueryState, cartCount int) string {
	var parts []string
	if q := strings.TrimSpace(state.SearchQuery); q != "" {
		parts = append(parts, "🔍 "+escape(q))
	}
	if state.Category != "" && state.Category != entity.CategoryAll {
		parts = append(parts, "📂 "+escape(format.CategoryName(state.Category)))
	}
	if state.SortBy != entity.SortNone {
		parts = append(parts, "↕ "+sortLabel(state.SortBy, state.Order))
	}
	parts = append(parts, fmt.Sprintf("🛒 %d", cartCount))
	return strings.Join(parts, "  ")
}

func sortLabel(field entity.SortField, order entity.SortOrder) string {
	for _, o := range sortOptions {
		if o.Field == field && o.Order == order {
			return o.Label
		}
	}
	return fmt.Sprintf("%s %s", field, order)
}

// renderGrid grid message and keyboard for a catalog snapshot
func renderGrid(snap usecase.CatalogSnapshot, cartCount int) (string, tgbotapi.InlineKeyboardMarkup) {
	var b strings.Builder
	b.WriteString(gridHeader(snap.State, cartCount))
	b.WriteString("\n\n")

	switch {
	case snap.Err != nil:
		b.WriteString("❌ <b>Error loading products</b>\nSomething went wrong. Please try again later.")
		return b.String(), tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔄 Retry", cbRetry)),
			controlsRow(),
		)
	case !snap.Loaded:
		b.WriteString("⏳ Loading products…")
		return b.String(), tgbotapi.NewInlineKeyboardMarkup(controlsRow())
	case len(snap.Products) == 0:
		b.WriteString("😕 <b>No products found</b>\nTry adjusting your search or filter criteria")
		return b.String(), tgbotapi.NewInlineKeyboardMarkup(controlsRow())
	}

	first, last := resultRange(snap.State.Page, snap.Total)
	fmt.Fprintf(&b, "Showing <b>%d</b> - <b>%d</b> of <b>%d</b> products\n", first, last, snap.Total)

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(snap.Products)+2)
	for i, p := range snap.Products {
		n := first + i
		b.WriteString("\n")
		b.WriteString(renderCard(n, p))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d. %s", n, truncate(p.Title, buttonTitleLen)), productData(cbView, p.ID)),
			addButton(p),
		))
	}

	if row := paginationRow(snap.State.Page, snap.TotalPages); row != nil {
		rows = append(rows, row)
	}
	rows = append(rows, controlsRow())
	return b.String(), tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// resultRange positions shown on page for total results
func resultRange(page, total int) (first, last int) {
	if total == 0 {
		return 0, 0
	}
	first = (page-1)*usecase.PageSize + 1
	last = min(page*usecase.PageSize, total)
	return first, last
}

func addButton(p entity.Product) tgbotapi.InlineKeyboardButton {
	if format.GetStockStatus(p.Stock) == format.OutOfStock {
		return tgbotapi.NewInlineKeyboardButtonData("Out of Stock", cbNoop)
	}
	return tgbotapi.NewInlineKeyboardButtonData("🛒 Add to Cart", productData(cbAdd, p.ID))
}

// renderCard one product card
func renderCard(n int, p entity.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%d. %s</b>\n", n, escape(p.Title))
	fmt.Fprintf(&b, "%s %s\n", format.Stars(p.Rating), format.Rating(p.Rating))

	discounted := format.DiscountedPrice(p.Price, p.DiscountPercentage)
	fmt.Fprintf(&b, "<b>%s</b>", format.Currency(discounted))
	if p.DiscountPercentage.IsPositive() {
		fmt.Fprintf(&b, " <s>%s</s> %s", format.Currency(p.Price), format.CardDiscountBadge(p.DiscountPercentage))
	}
	b.WriteString("\n")

	status := format.GetStockStatus(p.Stock)
	fmt.Fprintf(&b, "%s %s\n", format.StockBadge(status), status)
	return b.String()
}

// paginationRow numbered page buttons around page; nil when there is a single page
func paginationRow(page, totalPages int) []tgbotapi.InlineKeyboardButton {
	if totalPages <= 1 {
		return nil
	}

	var row []tgbotapi.InlineKeyboardButton
	if page > 1 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("«", pageData(page-1)))
	}
	for _, n := range pageNumbers(page, totalPages, pageWindow) {
		label := fmt.Sprintf("%d", n)
		data := pageData(n)
		if n == page {
			label = "· " + label + " ·"
			data = cbNoop
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, data))
	}
	if page < totalPages {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("»", pageData(page+1)))
	}
	return row
}

// pageNumbers at most window consecutive pages, centred on page where possible
func pageNumbers(page, totalPages, window int) []int {
	if totalPages <= 0 {
		return nil
	}
	start := max(1, page-window/2)
	end := start + window - 1
	if end > totalPages {
		end = totalPages
		start = max(1, end-window+1)
	}

	pages := make([]int, 0, end-start+1)
	for n := start; n <= end; n++ {
		pages = append(pages, n)
	}
	return pages
}

func controlsRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📂 Categories", cbCategories),
		tgbotapi.NewInlineKeyboardButtonData("↕ Sort", cbSortMenu),
		tgbotapi.NewInlineKeyboardButtonData("🛒 Cart", cbCart),
	)
}

// categoryKeyboard "All Categories" then every slug, two per row
func categoryKeyboard(slugs []string, current string) tgbotapi.InlineKeyboardMarkup {
	label := func(name, slug string) string {
		if slug == current {
			return "✅ " + name
		}
		return name
	}

	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label("All Categories", entity.CategoryAll), categoryData(entity.CategoryAll))),
	}
	row := []tgbotapi.InlineKeyboardButton{}
	for _, slug := range slugs {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label(format.CategoryName(slug), slug), categoryData(slug)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = []tgbotapi.InlineKeyboardButton{}
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func sortKeyboard(state entity.QueryState) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(sortOptions)+1)
	for _, o := range sortOptions {
		label := o.Label
		if state.SortBy == o.Field && state.Order == o.Order {
			label = "✅ " + label
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, sortData(o.Field, o.Order))))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Default order", sortData(entity.SortNone, entity.OrderAsc)),
	))
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// renderDetail the detail view of a product
func renderDetail(p entity.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n", escape(p.Title))
	if p.Brand != "" {
		fmt.Fprintf(&b, "by %s\n", escape(p.Brand))
	}
	fmt.Fprintf(&b, "📂 %s\n\n", escape(format.CategoryName(p.Category)))

	fmt.Fprintf(&b, "%s %s (%d reviews)\n", format.Stars(p.Rating), format.Rating(p.Rating), len(p.Reviews))

	discounted := format.DiscountedPrice(p.Price, p.DiscountPercentage)
	fmt.Fprintf(&b, "<b>%s</b>", format.Currency(discounted))
	if p.DiscountPercentage.IsPositive() {
		fmt.Fprintf(&b, " <s>%s</s> %s", format.Currency(p.Price), format.DetailDiscountBadge(p.DiscountPercentage))
	}
	b.WriteString("\n")

	status := format.GetStockStatus(p.Stock)
	fmt.Fprintf(&b, "%s %s (%d available)\n", format.StockBadge(status), status, p.Stock)

	if p.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", escape(p.Description))
	}

	b.WriteString("\n")
	if p.SKU != "" {
		fmt.Fprintf(&b, "SKU: %s\n", escape(p.SKU))
	}
	if p.Weight > 0 {
		fmt.Fprintf(&b, "Weight: %g kg\n", p.Weight)
	}
	d := p.Dimensions
	if d.Width > 0 || d.Height > 0 || d.Depth > 0 {
		fmt.Fprintf(&b, "Dimensions: %g × %g × %g cm\n", d.Width, d.Height, d.Depth)
	}
	if p.WarrantyInformation != "" {
		fmt.Fprintf(&b, "🛡 Warranty: %s\n", escape(p.WarrantyInformation))
	}
	if p.ShippingInformation != "" {
		fmt.Fprintf(&b, "🚚 Shipping: %s\n", escape(p.ShippingInformation))
	}
	if p.ReturnPolicy != "" {
		fmt.Fprintf(&b, "↩️ Returns: %s\n", escape(p.ReturnPolicy))
	}
	if p.MinimumOrderQuantity > 1 {
		fmt.Fprintf(&b, "Minimum order: %d\n", p.MinimumOrderQuantity)
	}

	if len(p.Reviews) > 0 {
		b.WriteString("\n<b>Reviews</b>\n")
		for _, r := range p.Reviews[:min(len(p.Reviews), maxReviews)] {
			fmt.Fprintf(&b, "%s <i>%s</i>\n%s\n", strings.Repeat("★", r.Rating)+strings.Repeat("☆", 5-r.Rating), escape(r.ReviewerName), escape(r.Comment))
		}
	}
	return b.String()
}

func detailKeyboard(p entity.Product) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			addButton(p),
			tgbotapi.NewInlineKeyboardButtonData("🏷 Print label", productData(cbPrint, p.ID)),
		),
	)
}

// renderCart cart lines and total
func renderCart(lines []entity.CartLine, total decimal.Decimal) (string, tgbotapi.InlineKeyboardMarkup) {
	if len(lines) == 0 {
		return "🛒 Your cart is empty.", tgbotapi.NewInlineKeyboardMarkup(controlsRow())
	}

	var b strings.Builder
	b.WriteString("<b>🛒 Cart</b>\n\n")
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(lines)+1)
	count := 0
	for _, l := range lines {
		count += l.Quantity
		fmt.Fprintf(&b, "%s\n%d × %s = <b>%s</b>\n", escape(l.Product.Title), l.Quantity, format.Currency(l.UnitPrice), format.Currency(l.LineTotal))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ "+truncate(l.Product.Title, buttonTitleLen), productData(cbRemove, l.Product.ID)),
		))
	}
	fmt.Fprintf(&b, "\n%d items, total <b>%s</b>", count, format.Currency(total))

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📄 Export", cbExport),
	))
	return b.String(), tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// printerKeyboard one button per device, the selected one ticked
func printerKeyboard(devices []entity.Device, selected string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(devices))
	for _, d := range devices {
		label := d.Name
		if d.UID == selected {
			label = "✅ " + label
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, cbPrinter+":"+d.UID)))
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/domain/entity"
	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/domain/repository"
	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/usecase"
)

// sender the part of the Bot API the handler talks through
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// BotHandler Telegram bot handler
type BotHandler struct {
	bot            *tgbotapi.BotAPI
	api            sender
	ownerChatID    int64
	catalogUseCase usecase.CatalogUseCase
	cartUseCase    usecase.CartUseCase
	printerUseCase usecase.PrinterUseCase
	exporter       repository.CartExporter
	logger         *zap.Logger

	// grid message the next catalog update edits; 0 sends a new one
	mu        sync.Mutex
	gridMsgID int
	showing   bool
}

// NewBotHandler creates the bot handler
func NewBotHandler(
	token string,
	ownerChatID int64,
	catalogUseCase usecase.CatalogUseCase,
	cartUseCase usecase.CartUseCase,
	printerUseCase usecase.PrinterUseCase,
	exporter repository.CartExporter,
	logger *zap.Logger,
) (*BotHandler, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	h := newHandler(bot, ownerChatID, catalogUseCase, cartUseCase, printerUseCase, exporter, logger)
	h.bot = bot
	return h, nil
}

func newHandler(
	api sender,
	ownerChatID int64,
	catalogUseCase usecase.CatalogUseCase,
	cartUseCase usecase.CartUseCase,
	printerUseCase usecase.PrinterUseCase,
	exporter repository.CartExporter,
	logger *zap.Logger,
) *BotHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BotHandler{
		api:            api,
		ownerChatID:    ownerChatID,
		catalogUseCase: catalogUseCase,
		cartUseCase:    cartUseCase,
		printerUseCase: printerUseCase,
		exporter:       exporter,
		logger:         logger.Named("telegram"),
	}
}

// Start runs the update loop until ctx is done
func (h *BotHandler) Start(ctx context.Context) error {
	h.logger.Info("bot started", zap.String("username", h.bot.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)
	go h.watchCatalog(ctx)
	h.catalogUseCase.Refresh()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("bot stopping")
			h.bot.StopReceivingUpdates()
			return ctx.Err()
		case update := <-updates:
			if update.CallbackQuery != nil {
				go h.handleCallback(ctx, update.CallbackQuery)
				continue
			}

			if update.Message == nil {
				continue
			}

			go h.handleMessage(ctx, update.Message)
		}
	}
}

// watchCatalog renders every applied catalog snapshot into the grid message
func (h *BotHandler) watchCatalog(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-h.catalogUseCase.Updates():
			h.mu.Lock()
			showing := h.showing
			h.mu.Unlock()
			if showing {
				h.showGrid(snap)
			}
		}
	}
}

// showGrid edits the current grid message or sends a new one
func (h *BotHandler) showGrid(snap usecase.CatalogSnapshot) {
	text, markup := renderGrid(snap, h.cartUseCase.GetCartCount())

	h.mu.Lock()
	defer h.mu.Unlock()
	h.showing = true

	if h.gridMsgID != 0 {
		edit := tgbotapi.NewEditMessageTextAndMarkup(h.ownerChatID, h.gridMsgID, text, markup)
		edit.ParseMode = tgbotapi.ModeHTML
		if _, err := h.api.Send(edit); err != nil {
			if strings.Contains(err.Error(), "message is not modified") {
				return
			}
			h.logger.Warn("failed to edit grid, sending a new one", zap.Error(err))
		} else {
			return
		}
	}

	msg := tgbotapi.NewMessage(h.ownerChatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	sent, err := h.api.Send(msg)
	if err != nil {
		h.logger.Error("failed to send grid", zap.Error(err))
		return
	}
	h.gridMsgID = sent.MessageID
}

// useGrid makes msgID the message the next catalog update lands in
func (h *BotHandler) useGrid(msgID int) {
	h.mu.Lock()
	h.gridMsgID = msgID
	h.showing = true
	h.mu.Unlock()
}

// changeQuery runs change and redraws at once when it left the query untouched
func (h *BotHandler) changeQuery(change func() error) error {
	before := h.catalogUseCase.State()
	if err := change(); err != nil {
		return err
	}
	if h.catalogUseCase.State() == before {
		h.showGrid(h.catalogUseCase.Snapshot())
	}
	return nil
}

// handleMessage routes owner messages; other chats are ignored
func (h *BotHandler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.Chat == nil || message.Chat.ID != h.ownerChatID {
		h.logger.Debug("ignoring message from foreign chat", zap.Int64("chat_id", chatIDOf(message)))
		return
	}

	if message.IsCommand() {
		h.handleCommand(ctx, message)
		return
	}

	// plain text is search input
	if text := strings.TrimSpace(message.Text); text != "" {
		h.useGrid(0)
		h.catalogUseCase.SearchInput(text)
	}
}

func chatIDOf(message *tgbotapi.Message) int64 {
	if message.Chat == nil {
		return 0
	}
	return message.Chat.ID
}

// handleCommand dispatches slash commands
func (h *BotHandler) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	args := strings.TrimSpace(message.CommandArguments())

	switch message.Command() {
	case "start":
		h.sendMessage(chatID, welcomeMessage)
		h.useGrid(0)
		h.showGrid(h.catalogUseCase.Snapshot())
	case "help":
		h.sendMessage(chatID, helpMessage)
	case "search":
		h.useGrid(0)
		_ = h.changeQuery(func() error {
			h.catalogUseCase.SetSearch(args)
			return nil
		})
	case "categories":
		h.sendCategories(ctx, chatID)
	case "sort":
		h.sendHTML(chatID, "↕ Sort products", sortKeyboard(h.catalogUseCase.State()))
	case "cart":
		h.sendCart(ctx, chatID, 0)
	case "clear":
		if err := h.cartUseCase.ClearCart(ctx); err != nil {
			h.logger.Error("failed to clear cart", zap.Error(err))
			h.sendMessage(chatID, "❌ Could not clear the cart.")
			return
		}
		h.sendMessage(chatID, "🧹 Cart cleared.")
	case "export":
		h.sendExport(ctx, chatID)
	case "printers":
		h.sendPrinters(ctx, chatID)
	case "print":
		id, err := strconv.Atoi(args)
		if err != nil || id <= 0 {
			h.sendMessage(chatID, "Usage: /print <product id>")
			return
		}
		h.printLabel(ctx, chatID, id)
	default:
		h.sendMessage(chatID, "Unknown command. /help for help.")
	}
}

// handleCallback inline button presses
func (h *BotHandler) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil || cq.Message.Chat == nil || cq.Message.Chat.ID != h.ownerChatID {
		h.answer(cq.ID, "")
		return
	}
	chatID := cq.Message.Chat.ID
	msgID := cq.Message.MessageID

	action, err := parseCallback(cq.Data)
	if err != nil {
		h.logger.Warn("bad callback data", zap.String("data", cq.Data), zap.Error(err))
		h.answer(cq.ID, "")
		return
	}

	toast := ""
	switch action.Kind {
	case cbPage:
		h.useGrid(msgID)
		if err := h.changeQuery(func() error { return h.catalogUseCase.SetPage(action.Page) }); err != nil {
			toast = "Page out of range"
		}
	case cbCategory:
		h.useGrid(msgID)
		_ = h.changeQuery(func() error {
			h.catalogUseCase.SetCategory(action.Slug)
			return nil
		})
	case cbSort:
		h.useGrid(msgID)
		if err := h.changeQuery(func() error { return h.catalogUseCase.SetSort(action.Field, action.Order) }); err != nil {
			toast = "Unsupported sort"
		}
	case cbRetry:
		h.useGrid(msgID)
		h.catalogUseCase.Refresh()
	case cbCategories:
		slugs, err := h.catalogUseCase.Categories(ctx)
		if err != nil {
			h.logger.Error("failed to load categories", zap.Error(err))
			toast = "Could not load categories"
			break
		}
		h.editMarkup(chatID, msgID, categoryKeyboard(slugs, h.catalogUseCase.State().Category))
	case cbSortMenu:
		h.editMarkup(chatID, msgID, sortKeyboard(h.catalogUseCase.State()))
	case cbAdd:
		toast = h.addToCart(ctx, action.ID)
	case cbView:
		h.sendDetail(ctx, chatID, action.ID)
	case cbRemove:
		if err := h.cartUseCase.RemoveFromCart(ctx, action.ID); err != nil {
			h.logger.Error("failed to remove from cart", zap.Int("product_id", action.ID), zap.Error(err))
			toast = "Could not update the cart"
			break
		}
		h.sendCart(ctx, chatID, msgID)
	case cbCart:
		h.sendCart(ctx, chatID, 0)
	case cbExport:
		h.sendExport(ctx, chatID)
	case cbPrint:
		h.printLabel(ctx, chatID, action.ID)
	case cbPrinter:
		if err := h.printerUseCase.SelectDevice(ctx, action.UID); err != nil {
			h.logger.Warn("failed to select printer", zap.String("uid", action.UID), zap.Error(err))
			toast = "Printer not available"
			break
		}
		toast = "Printer selected"
		h.editMarkup(chatID, msgID, printerKeyboard(h.printerUseCase.Devices(), action.UID))
	}

	h.answer(cq.ID, toast)
}

// addToCart adds one unit and returns the toast text
func (h *BotHandler) addToCart(ctx context.Context, id int) string {
	p, err := h.catalogUseCase.Product(ctx, id)
	if err != nil {
		h.logger.Error("failed to load product", zap.Int("product_id", id), zap.Error(err))
		return "Could not load product"
	}
	if p.Stock == 0 {
		return "Out of Stock"
	}
	if err := h.cartUseCase.AddToCart(ctx, *p, 1); err != nil {
		h.logger.Error("failed to add to cart", zap.Int("product_id", id), zap.Error(err))
		return "Could not update the cart"
	}
	return p.Title + " added to cart!"
}

func (h *BotHandler) sendCategories(ctx context.Context, chatID int64) {
	slugs, err := h.catalogUseCase.Categories(ctx)
	if err != nil {
		h.logger.Error("failed to load categories", zap.Error(err))
		h.sendMessage(chatID, "❌ Could not load categories.")
		return
	}
	h.sendHTML(chatID, "📂 Choose a category", categoryKeyboard(slugs, h.catalogUseCase.State().Category))
}

// sendDetail thumbnail then the detail view
func (h *BotHandler) sendDetail(ctx context.Context, chatID int64, id int) {
	p, err := h.catalogUseCase.Product(ctx, id)
	if err != nil {
		h.logger.Error("failed to load product", zap.Int("product_id", id), zap.Error(err))
		if errors.Is(err, entity.ErrNotFound) {
			h.sendMessage(chatID, "❌ Product not found.")
		} else {
			h.sendMessage(chatID, "❌ Could not load product.")
		}
		return
	}

	if p.Thumbnail != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(p.Thumbnail))
		photo.Caption = p.Title
		if _, err := h.api.Send(photo); err != nil {
			h.logger.Warn("failed to send thumbnail", zap.Int("product_id", id), zap.Error(err))
		}
	}
	h.sendHTML(chatID, renderDetail(*p), detailKeyboard(*p))
}

// sendCart renders the cart; a non-zero msgID is edited in place
func (h *BotHandler) sendCart(ctx context.Context, chatID int64, msgID int) {
	lines, err := h.cartUseCase.Items(ctx)
	if err != nil {
		h.logger.Error("failed to load cart", zap.Error(err))
		h.sendMessage(chatID, "❌ Could not load the cart.")
		return
	}
	total, err := h.cartUseCase.GetCartTotal(ctx)
	if err != nil {
		h.logger.Error("failed to total cart", zap.Error(err))
		h.sendMessage(chatID, "❌ Could not load the cart.")
		return
	}

	text, markup := renderCart(lines, total)
	if msgID != 0 {
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, text, markup)
		edit.ParseMode = tgbotapi.ModeHTML
		if _, err := h.api.Send(edit); err == nil {
			return
		}
	}
	h.sendHTML(chatID, text, markup)
}

// sendExport the cart as an XLSX document
func (h *BotHandler) sendExport(ctx context.Context, chatID int64) {
	lines, err := h.cartUseCase.Items(ctx)
	if err != nil {
		h.logger.Error("failed to load cart", zap.Error(err))
		h.sendMessage(chatID, "❌ Could not load the cart.")
		return
	}
	if len(lines) == 0 {
		h.sendMessage(chatID, "🛒 Your cart is empty.")
		return
	}

	data, err := h.exporter.ExportCart(ctx, lines)
	if err != nil {
		h.logger.Error("failed to export cart", zap.Error(err))
		h.sendMessage(chatID, "❌ Export failed.")
		return
	}

	name := fmt.Sprintf("cart-%s.xlsx", uuid.NewString()[:8])
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	if _, err := h.api.Send(doc); err != nil {
		h.logger.Error("failed to send export", zap.Error(err))
	}
}

func (h *BotHandler) sendPrinters(ctx context.Context, chatID int64) {
	if len(h.printerUseCase.Devices()) == 0 {
		if err := h.printerUseCase.Setup(ctx); err != nil {
			h.logger.Warn("printer setup failed", zap.Error(err))
		}
	}

	devices := h.printerUseCase.Devices()
	if len(devices) == 0 {
		h.sendMessage(chatID, "🖨 No printers found.")
		return
	}
	selected, _ := h.printerUseCase.Selected()
	h.sendHTML(chatID, "🖨 Choose a label printer", printerKeyboard(devices, selected.UID))
}

// printLabel prints a label for product id and reports the outcome
func (h *BotHandler) printLabel(ctx context.Context, chatID int64, id int) {
	p, err := h.catalogUseCase.Product(ctx, id)
	if err != nil {
		h.logger.Error("failed to load product", zap.Int("product_id", id), zap.Error(err))
		h.sendMessage(chatID, "❌ Could not load product.")
		return
	}

	select {
	case err = <-h.printerUseCase.PrintProductLabel(ctx, *p):
	case <-ctx.Done():
		return
	}

	switch {
	case errors.Is(err, entity.ErrNoDevice):
		h.sendMessage(chatID, "🖨 No printer selected. Use /printers.")
	case err != nil:
		h.sendMessage(chatID, "❌ Printing failed.")
	default:
		h.sendMessage(chatID, "🏷 Label for "+p.Title+" sent to the printer.")
	}
}

func (h *BotHandler) answer(callbackID, text string) {
	if _, err := h.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		h.logger.Debug("failed to answer callback", zap.Error(err))
	}
}

func (h *BotHandler) editMarkup(chatID int64, msgID int, markup tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, msgID, markup)
	if _, err := h.api.Send(edit); err != nil {
		h.logger.Debug("failed to edit keyboard", zap.Error(err))
	}
}

// sendMessage plain text message
func (h *BotHandler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.api.Send(msg); err != nil {
		h.logger.Error("failed to send message", zap.Error(err))
	}
}

func (h *BotHandler) sendHTML(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	if _, err := h.api.Send(msg); err != nil {
		h.logger.Error("failed to send message", zap.Error(err))
	}
}

const welcomeMessage = `👋 Welcome to the product dashboard!

Type anything to search the catalog, or use the buttons under the product list to filter, sort and page through it.`

const helpMessage = `Commands:
/start - show the product list
/search <text> - search products
/categories - filter by category
/sort - change the sort order
/cart - show the cart
/clear - empty the cart
/export - download the cart as a spreadsheet
/printers - choose a label printer
/print <id> - print a shelf label

Any other text is used as a search.`

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/domain/entity"
	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/domain/repository"
	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/pkg/format"
)

// PrinterUseCase label printer discovery, selection and output
type PrinterUseCase interface {
	// Setup loads the default device, then merges discovered ones
	Setup(ctx context.Context) error

	// Devices known devices, default first
	Devices() []entity.Device

	// Selected the selected device, if any
	Selected() (entity.Device, bool)

	// SelectDevice selects uid and remembers it across restarts
	SelectDevice(ctx context.Context, uid string) error

	// WriteToSelectedPrinter sends data to the selected device; the channel yields one result
	WriteToSelectedPrinter(ctx context.Context, data []byte) <-chan error

	// ReadFromSelectedPrinter reads the device's pending response
	ReadFromSelectedPrinter(ctx context.Context) <-chan entity.ReadResult

	// SendFile has the selected device print the file at url
	SendFile(ctx context.Context, url string) <-chan error

	// PrintProductLabel prints a shelf label for product
	PrintProductLabel(ctx context.Context, product entity.Product) <-chan error
}

type printerUseCase struct {
	driver  repository.PrinterDriver
	storage repository.LocalStorage
	logger  *zap.Logger

	mu       sync.Mutex
	devices  []repository.PrinterDevice
	selected repository.PrinterDevice
}

// NewPrinterUseCase creates the printer use case; call Setup before printing
func NewPrinterUseCase(driver repository.PrinterDriver, storage repository.LocalStorage, logger *zap.Logger) PrinterUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &printerUseCase{
		driver:  driver,
		storage: storage,
		logger:  logger.Named("printer"),
	}
}

// Setup default device first; discovery failures are logged and keep what was found
func (u *printerUseCase) Setup(ctx context.Context) error {
	def, err := u.driver.DefaultDevice(ctx, entity.DeviceKindPrinter)
	if err != nil && !errors.Is(err, entity.ErrNoDevice) {
		return fmt.Errorf("failed to get default printer: %w", err)
	}

	var devices []repository.PrinterDevice
	if def != nil {
		devices = append(devices, def)
	}

	found, err := u.driver.Discover(ctx, entity.DeviceKindPrinter)
	if err != nil {
		u.logger.Warn("Error getting local devices", zap.Error(err))
	}
	for _, d := range found {
		if def != nil && d.Info().UID == def.Info().UID {
			continue
		}
		devices = append(devices, d)
	}

	u.mu.Lock()
	u.devices = devices
	u.selected = def
	u.mu.Unlock()

	// a remembered choice overrides the default
	if err := u.restoreSelection(ctx); err != nil {
		u.logger.Warn("failed to restore printer selection", zap.Error(err))
	}

	u.logger.Info("printers ready", zap.Int("devices", len(devices)))
	return nil
}

// restoreSelection re-applies the persisted uid when it names a known device
func (u *printerUseCase) restoreSelection(ctx context.Context) error {
	uid, ok, err := u.storage.GetItem(ctx, entity.PrinterStorageKey)
	if err != nil || !ok {
		return err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if d := u.findLocked(uid); d != nil {
		u.selected = d
	}
	return nil
}

func (u *printerUseCase) findLocked(uid string) repository.PrinterDevice {
	for _, d := range u.devices {
		if d.Info().UID == uid {
			return d
		}
	}
	return nil
}

// Devices known devices
func (u *printerUseCase) Devices() []entity.Device {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make([]entity.Device, 0, len(u.devices))
	for _, d := range u.devices {
		out = append(out, d.Info())
	}
	return out
}

// Selected the selected device
func (u *printerUseCase) Selected() (entity.Device, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.selected == nil {
		return entity.Device{}, false
	}
	return u.selected.Info(), true
}

// SelectDevice selects and persists uid
func (u *printerUseCase) SelectDevice(ctx context.Context, uid string) error {
	u.mu.Lock()
	d := u.findLocked(uid)
	u.mu.Unlock()
	if d == nil {
		return fmt.Errorf("%w: unknown printer %q", entity.ErrNotFound, uid)
	}

	if err := u.storage.SetItem(ctx, entity.PrinterStorageKey, uid); err != nil {
		return fmt.Errorf("failed to save printer selection: %w", err)
	}

	u.mu.Lock()
	u.selected = d
	u.mu.Unlock()
	return nil
}

func (u *printerUseCase) current() repository.PrinterDevice {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.selected
}

// async runs op against the selected device and reports on a buffered channel
func (u *printerUseCase) async(ctx context.Context, what string, op func(d repository.PrinterDevice) error) <-chan error {
	result := make(chan error, 1)

	d := u.current()
	if d == nil {
		result <- entity.ErrNoDevice
		close(result)
		return result
	}

	go func() {
		defer close(result)
		err := op(d)
		if err != nil {
			u.logger.Error("Error: "+what, zap.String("device", d.Info().UID), zap.Error(err))
		}
		result <- err
	}()
	return result
}

// WriteToSelectedPrinter re-applies the remembered selection, then sends
func (u *printerUseCase) WriteToSelectedPrinter(ctx context.Context, data []byte) <-chan error {
	if err := u.restoreSelection(ctx); err != nil {
		u.logger.Warn("failed to restore printer selection", zap.Error(err))
	}
	u.logger.Debug("writing to printer", zap.Int("bytes", len(data)))

	return u.async(ctx, "write", func(d repository.PrinterDevice) error {
		return d.Send(ctx, data)
	})
}

// ReadFromSelectedPrinter reads a pending response
func (u *printerUseCase) ReadFromSelectedPrinter(ctx context.Context) <-chan entity.ReadResult {
	result := make(chan entity.ReadResult, 1)

	d := u.current()
	if d == nil {
		result <- entity.ReadResult{Err: entity.ErrNoDevice}
		close(result)
		return result
	}

	go func() {
		defer close(result)
		data, err := d.Read(ctx)
		switch {
		case err != nil:
			u.logger.Error("Error: read", zap.String("device", d.Info().UID), zap.Error(err))
		case len(data) == 0:
			u.logger.Info("No response from device", zap.String("device", d.Info().UID))
		default:
			u.logger.Info("device response", zap.String("device", d.Info().UID), zap.ByteString("data", data))
		}
		result <- entity.ReadResult{Data: data, Err: err}
	}()
	return result
}

// SendFile prints the file at url
func (u *printerUseCase) SendFile(ctx context.Context, url string) <-chan error {
	return u.async(ctx, "send file", func(d repository.PrinterDevice) error {
		return d.SendFile(ctx, url)
	})
}

// PrintProductLabel prints a ZPL shelf label
func (u *printerUseCase) PrintProductLabel(ctx context.Context, product entity.Product) <-chan error {
	return u.WriteToSelectedPrinter(ctx, []byte(ProductLabel(product)))
}

// ProductLabel ZPL for a 2x1 inch shelf label: title, SKU, discounted price and a Code128 barcode
func ProductLabel(p entity.Product) string {
	sku := strings.TrimSpace(p.SKU)
	if sku == "" {
		sku = fmt.Sprintf("%d", p.ID)
	}
	price := format.Currency(format.DiscountedPrice(p.Price, p.DiscountPercentage))

	var b strings.Builder
	b.WriteString("^XA\n")
	b.WriteString("^CI28\n")
	fmt.Fprintf(&b, "^FO20,15^A0N,28,28^FB370,2,0,L^FD%s^FS\n", zplField(p.Title))
	fmt.Fprintf(&b, "^FO20,80^A0N,22,22^FDSKU: %s^FS\n", zplField(sku))
	fmt.Fprintf(&b, "^FO250,80^A0N,30,30^FD%s^FS\n", zplField(price))
	fmt.Fprintf(&b, "^FO20,115^BY2^BCN,60,Y,N,N^FD%s^FS\n", zplField(sku))
	b.WriteString("^XZ\n")
	return b.String()
}

// zplField strips the ZPL command prefixes so field data cannot start a command
func zplField(s string) string {
	return strings.NewReplacer("^", " ", "~", " ", "\n", " ", "\r", " ").Replace(s)
}

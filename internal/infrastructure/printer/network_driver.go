// Package printer talks to raw-TCP label printers (ZPL over port 9100).
package printer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/domain/entity"
	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/domain/repository"
)

// Target configured printer address
type Target struct {
	Name    string
	Address string
}

// Options driver timeouts
type Options struct {
	DialTimeout time.Duration
	ReadTimeout time.Duration
	HTTPClient  *http.Client
}

type networkDriver struct {
	targets []Target
	opts    Options
	logger  *zap.Logger

	mu      sync.Mutex
	devices map[string]*networkDevice
}

// NewNetworkDriver driver over a fixed list of raw-TCP printers
func NewNetworkDriver(targets []Target, opts Options, logger *zap.Logger) repository.PrinterDriver {
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 2 * time.Second
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 2 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &networkDriver{
		targets: targets,
		opts:    opts,
		logger:  logger.Named("printer"),
		devices: make(map[string]*networkDevice),
	}
}

// DefaultDevice first configured printer that answers a dial
func (d *networkDriver) DefaultDevice(ctx context.Context, kind entity.DeviceKind) (repository.PrinterDevice, error) {
	if kind != entity.DeviceKindPrinter {
		return nil, fmt.Errorf("%w: unsupported device kind %q", entity.ErrValidation, kind)
	}
	for _, t := range d.targets {
		if d.reachable(ctx, t.Address) {
			return d.device(t), nil
		}
	}
	return nil, entity.ErrNoDevice
}

// Discover every configured printer that answers a dial
func (d *networkDriver) Discover(ctx context.Context, kind entity.DeviceKind) ([]repository.PrinterDevice, error) {
	if kind != entity.DeviceKindPrinter {
		return nil, fmt.Errorf("%w: unsupported device kind %q", entity.ErrValidation, kind)
	}
	var found []repository.PrinterDevice
	for _, t := range d.targets {
		if d.reachable(ctx, t.Address) {
			found = append(found, d.device(t))
		}
	}
	return found, nil
}

func (d *networkDriver) reachable(ctx context.Context, addr string) bool {
	dialer := net.Dialer{Timeout: d.opts.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		d.logger.Debug("printer unreachable", zap.String("address", addr), zap.Error(err))
		return false
	}
	conn.Close()
	return true
}

// device one device value per address so a connection is shared by Send and Read
func (d *networkDriver) device(t Target) *networkDevice {
	d.mu.Lock()
	defer d.mu.Unlock()

	uid := "tcp:" + t.Address
	if dev, ok := d.devices[uid]; ok {
		return dev
	}
	name := t.Name
	if name == "" {
		name = t.Address
	}
	dev := &networkDevice{
		info: entity.Device{
			UID:        uid,
			Name:       name,
			Kind:       entity.DeviceKindPrinter,
			Connection: "network",
			Address:    t.Address,
		},
		opts: d.opts,
	}
	d.devices[uid] = dev
	return dev
}

type networkDevice struct {
	info entity.Device
	opts Options

	mu   sync.Mutex
	conn net.Conn
}

// Info device description
func (n *networkDevice) Info() entity.Device {
	return n.info
}

// connLocked dials lazily; n.mu must be held
func (n *networkDevice) connLocked(ctx context.Context) (net.Conn, error) {
	if n.conn != nil {
		return n.conn, nil
	}
	dialer := net.Dialer{Timeout: n.opts.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", n.info.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrNetwork, err)
	}
	n.conn = conn
	return conn, nil
}

func (n *networkDevice) dropLocked() {
	if n.conn != nil {
		n.conn.Close()
		n.conn = nil
	}
}

// Send writes data to the printer
func (n *networkDevice) Send(ctx context.Context, data []byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	conn, err := n.connLocked(ctx)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetWriteDeadline(deadline)
	} else {
		conn.SetWriteDeadline(time.Time{})
	}
	if _, err := conn.Write(data); err != nil {
		n.dropLocked()
		return fmt.Errorf("%w: %w", entity.ErrNetwork, err)
	}
	return nil
}

// Read returns whatever the printer sent back within the read timeout
func (n *networkDevice) Read(ctx context.Context) ([]byte, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	conn, err := n.connLocked(ctx)
	if err != nil {
		return nil, err
	}
	deadline := time.Now().Add(n.opts.ReadTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetReadDeadline(deadline)

	buf := make([]byte, 4096)
	nr, err := conn.Read(buf)
	switch {
	case err == nil:
		return buf[:nr], nil
	case errors.Is(err, os.ErrDeadlineExceeded):
		return nil, nil
	case errors.Is(err, io.EOF):
		n.dropLocked()
		return buf[:nr], nil
	default:
		n.dropLocked()
		return nil, fmt.Errorf("%w: %w", entity.ErrNetwork, err)
	}
}

// SendFile downloads url and sends the body unchanged
func (n *networkDevice) SendFile(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", entity.ErrValidation, err)
	}
	resp, err := n.opts.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", entity.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &entity.HTTPError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %w", entity.ErrNetwork, err)
	}
	return n.Send(ctx, data)
}

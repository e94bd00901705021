package repository

import (
	"context"

	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/domain/entity"
)

// PrinterDevice a single output device
type PrinterDevice interface {
	// Info device description
	Info() entity.Device

	// Send writes raw bytes to the device
	Send(ctx context.Context, data []byte) error

	// Read reads a pending response; empty data means the device said nothing
	Read(ctx context.Context) ([]byte, error)

	// SendFile downloads url and sends its content to the device
	SendFile(ctx context.Context, url string) error
}

// PrinterDriver discovers devices on the host
type PrinterDriver interface {
	// DefaultDevice the driver's default device of the given kind
	DefaultDevice(ctx context.Context, kind entity.DeviceKind) (PrinterDevice, error)

	// Discover all reachable devices of the given kind
	Discover(ctx context.Context, kind entity.DeviceKind) ([]PrinterDevice, error)
}

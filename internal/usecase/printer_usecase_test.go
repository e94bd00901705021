package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/domain/entity"
	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/domain/repository"
)

type fakeDevice struct {
	uid     string
	mu      sync.Mutex
	sent    [][]byte
	files   []string
	reply   []byte
	sendErr error
}

func (d *fakeDevice) Info() entity.Device {
	return entity.Device{UID: d.uid, Name: d.uid, Kind: entity.DeviceKindPrinter, Connection: "network"}
}

func (d *fakeDevice) Send(ctx context.Context, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sendErr != nil {
		return d.sendErr
	}
	d.sent = append(d.sent, data)
	return nil
}

func (d *fakeDevice) Read(ctx context.Context) ([]byte, error) {
	return d.reply, nil
}

func (d *fakeDevice) SendFile(ctx context.Context, url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.files = append(d.files, url)
	return nil
}

func (d *fakeDevice) sentCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sent)
}

type fakeDriver struct {
	def   *fakeDevice
	found []*fakeDevice
}

func (f *fakeDriver) DefaultDevice(ctx context.Context, kind entity.DeviceKind) (repository.PrinterDevice, error) {
	if f.def == nil {
		return nil, entity.ErrNoDevice
	}
	return f.def, nil
}

func (f *fakeDriver) Discover(ctx context.Context, kind entity.DeviceKind) ([]repository.PrinterDevice, error) {
	out := make([]repository.PrinterDevice, 0, len(f.found))
	for _, d := range f.found {
		out = append(out, d)
	}
	return out, nil
}

func recv(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(waitFor):
		t.Fatal("no result")
		return nil
	}
}

func TestPrinter_SetupMergesDevices(t *testing.T) {
	a, b := &fakeDevice{uid: "tcp:a:9100"}, &fakeDevice{uid: "tcp:b:9100"}
	u := NewPrinterUseCase(&fakeDriver{def: a, found: []*fakeDevice{a, b}}, newFakeStorage(), zap.NewNop())

	require.NoError(t, u.Setup(context.Background()))

	devices := u.Devices()
	require.Len(t, devices, 2)
	assert.Equal(t, "tcp:a:9100", devices[0].UID)
	assert.Equal(t, "tcp:b:9100", devices[1].UID)

	sel, ok := u.Selected()
	require.True(t, ok)
	assert.Equal(t, "tcp:a:9100", sel.UID)
}

func TestPrinter_NoDevice(t *testing.T) {
	u := NewPrinterUseCase(&fakeDriver{}, newFakeStorage(), zap.NewNop())
	require.NoError(t, u.Setup(context.Background()))

	_, ok := u.Selected()
	assert.False(t, ok)
	assert.ErrorIs(t, recv(t, u.WriteToSelectedPrinter(context.Background(), []byte("~HS"))), entity.ErrNoDevice)

	res := <-u.ReadFromSelectedPrinter(context.Background())
	assert.ErrorIs(t, res.Err, entity.ErrNoDevice)
}

func TestPrinter_SelectionPersistsAndIsReapplied(t *testing.T) {
	ctx := context.Background()
	a, b := &fakeDevice{uid: "a"}, &fakeDevice{uid: "b"}
	store := newFakeStorage()
	u := NewPrinterUseCase(&fakeDriver{def: a, found: []*fakeDevice{b}}, store, zap.NewNop())
	require.NoError(t, u.Setup(ctx))

	assert.ErrorIs(t, u.SelectDevice(ctx, "missing"), entity.ErrNotFound)

	require.NoError(t, u.SelectDevice(ctx, "b"))
	v, _ := store.value(entity.PrinterStorageKey)
	assert.Equal(t, "b", v)

	require.NoError(t, recv(t, u.WriteToSelectedPrinter(ctx, []byte("^XA^XZ"))))
	assert.Equal(t, 1, b.sentCount())
	assert.Zero(t, a.sentCount())

	// a selection stored elsewhere wins at the next write
	store.data[entity.PrinterStorageKey] = "a"
	require.NoError(t, recv(t, u.WriteToSelectedPrinter(ctx, []byte("^XA^XZ"))))
	assert.Equal(t, 1, a.sentCount())

	// and is restored by a fresh setup
	again := NewPrinterUseCase(&fakeDriver{def: b, found: []*fakeDevice{a}}, store, zap.NewNop())
	require.NoError(t, again.Setup(ctx))
	sel, _ := again.Selected()
	assert.Equal(t, "a", sel.UID)
}

func TestPrinter_WriteErrorOnChannel(t *testing.T) {
	boom := errors.New("connection reset")
	u := NewPrinterUseCase(&fakeDriver{def: &fakeDevice{uid: "a", sendErr: boom}}, newFakeStorage(), zap.NewNop())
	require.NoError(t, u.Setup(context.Background()))

	assert.ErrorIs(t, recv(t, u.WriteToSelectedPrinter(context.Background(), []byte("x"))), boom)
}

func TestPrinter_ReadLogsEmptyResponse(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dev := &fakeDevice{uid: "a"}
	u := NewPrinterUseCase(&fakeDriver{def: dev}, newFakeStorage(), zap.New(core))
	require.NoError(t, u.Setup(context.Background()))

	res := <-u.ReadFromSelectedPrinter(context.Background())
	require.NoError(t, res.Err)
	assert.Empty(t, res.Data)
	assert.Equal(t, 1, logs.FilterMessage("No response from device").Len())

	dev.reply = []byte("OK")
	res = <-u.ReadFromSelectedPrinter(context.Background())
	assert.Equal(t, []byte("OK"), res.Data)
}

func TestPrinter_SendFile(t *testing.T) {
	dev := &fakeDevice{uid: "a"}
	u := NewPrinterUseCase(&fakeDriver{def: dev}, newFakeStorage(), zap.NewNop())
	require.NoError(t, u.Setup(context.Background()))

	require.NoError(t, recv(t, u.SendFile(context.Background(), "http://host/label.zpl")))
	assert.Equal(t, []string{"http://host/label.zpl"}, dev.files)
}

func TestPrinter_PrintProductLabel(t *testing.T) {
	dev := &fakeDevice{uid: "a"}
	u := NewPrinterUseCase(&fakeDriver{def: dev}, newFakeStorage(), zap.NewNop())
	require.NoError(t, u.Setup(context.Background()))

	p := entity.Product{
		ID:                 1,
		Title:              "Essence ^Mascara~",
		SKU:                "RCH45Q1A",
		Price:              decimal.RequireFromString("100"),
		DiscountPercentage: decimal.RequireFromString("10"),
	}
	require.NoError(t, recv(t, u.PrintProductLabel(context.Background(), p)))
	require.Equal(t, 1, dev.sentCount())

	label := string(dev.sent[0])
	assert.True(t, strings.HasPrefix(label, "^XA"))
	assert.True(t, strings.HasSuffix(label, "^XZ\n"))
	assert.Contains(t, label, "^FDEssence  Mascara ^FS")
	assert.Contains(t, label, "^FDSKU: RCH45Q1A^FS")
	assert.Contains(t, label, "^FD$90.00^FS")
	assert.Contains(t, label, "^BCN,60,Y,N,N^FDRCH45Q1A^FS")
}

func TestProductLabel_SKUFallsBackToID(t *testing.T) {
	label := ProductLabel(entity.Product{ID: 42, Title: "Plain"})
	assert.Contains(t, label, "^FDSKU: 42^FS")
	assert.Contains(t, label, "^FD$0.00^FS")
}

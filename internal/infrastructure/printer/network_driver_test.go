package printer

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/domain/entity"
)

// fakePrinter accepts connections, forwards every received line and answers "OK" to "~HS"
type fakePrinter struct {
	ln       net.Listener
	received chan string
}

func newFakePrinter(t *testing.T) *fakePrinter {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	p := &fakePrinter{ln: ln, received: make(chan string, 16)}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go p.serve(conn)
		}
	}()
	t.Cleanup(func() { ln.Close() })
	return p
}

func (p *fakePrinter) serve(conn net.Conn) {
	defer conn.Close()
	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		line := sc.Text()
		p.received <- line
		if line == "~HS" {
			conn.Write([]byte("OK\n"))
		}
	}
}

func (p *fakePrinter) addr() string {
	return p.ln.Addr().String()
}

func deadAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()
	return addr
}

func fastOptions() Options {
	return Options{DialTimeout: 200 * time.Millisecond, ReadTimeout: 200 * time.Millisecond}
}

func TestDiscover_SkipsUnreachable(t *testing.T) {
	live := newFakePrinter(t)
	driver := NewNetworkDriver([]Target{
		{Name: "gone", Address: deadAddr(t)},
		{Name: "desk", Address: live.addr()},
	}, fastOptions(), nil)

	devices, err := driver.Discover(context.Background(), entity.DeviceKindPrinter)
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "desk", devices[0].Info().Name)
	assert.Equal(t, "tcp:"+live.addr(), devices[0].Info().UID)

	def, err := driver.DefaultDevice(context.Background(), entity.DeviceKindPrinter)
	require.NoError(t, err)
	assert.Equal(t, devices[0].Info().UID, def.Info().UID)
}

func TestDefaultDevice_NoneReachable(t *testing.T) {
	driver := NewNetworkDriver([]Target{{Address: deadAddr(t)}}, fastOptions(), nil)

	_, err := driver.DefaultDevice(context.Background(), entity.DeviceKindPrinter)
	assert.ErrorIs(t, err, entity.ErrNoDevice)

	_, err = driver.Discover(context.Background(), "scanner")
	assert.ErrorIs(t, err, entity.ErrValidation)
}

func TestDevice_SendAndRead(t *testing.T) {
	live := newFakePrinter(t)
	driver := NewNetworkDriver([]Target{{Address: live.addr()}}, fastOptions(), nil)

	dev, err := driver.DefaultDevice(context.Background(), entity.DeviceKindPrinter)
	require.NoError(t, err)
	assert.Equal(t, live.addr(), dev.Info().Name)

	require.NoError(t, dev.Send(context.Background(), []byte("^XA^FDhello^FS^XZ\n")))
	assert.Equal(t, "^XA^FDhello^FS^XZ", <-live.received)

	// nothing pending: empty read, no error
	data, err := dev.Read(context.Background())
	require.NoError(t, err)
	assert.Empty(t, data)

	require.NoError(t, dev.Send(context.Background(), []byte("~HS\n")))
	<-live.received
	data, err = dev.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "OK\n", string(data))
}

func TestDevice_SendFile(t *testing.T) {
	live := newFakePrinter(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/label.zpl" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("^XA^FDfile^FS^XZ\n"))
	}))
	defer srv.Close()

	driver := NewNetworkDriver([]Target{{Address: live.addr()}}, fastOptions(), nil)
	dev, err := driver.DefaultDevice(context.Background(), entity.DeviceKindPrinter)
	require.NoError(t, err)

	require.NoError(t, dev.SendFile(context.Background(), srv.URL+"/label.zpl"))
	assert.Equal(t, "^XA^FDfile^FS^XZ", <-live.received)

	err = dev.SendFile(context.Background(), srv.URL+"/missing.zpl")
	assert.ErrorIs(t, err, entity.ErrHTTP)
}

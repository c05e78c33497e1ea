package daemon

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"
)

func TestServe_StopsOnCancel(t *testing.T) {
	t.Setenv(EnvHome, t.TempDir())

	cfg := DefaultConfig()
	cfg.API.Port = 0 // any free port
	d, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewWithConfig() error: %v", err)
	}
	defer d.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Serve(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}

func TestServe_PortInUse(t *testing.T) {
	t.Setenv(EnvHome, t.TempDir())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	cfg := DefaultConfig()
	cfg.API.Port = ln.Addr().(*net.TCPAddr).Port
	d, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewWithConfig() error: %v", err)
	}
	defer d.Close()

	select {
	case err := <-serveAsync(d):
		if err == nil || !strings.Contains(err.Error(), "http server") {
			t.Errorf("Serve() error = %v, want bind failure", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() should fail fast when the port is taken")
	}
}

func serveAsync(d *Daemon) <-chan error {
	done := make(chan error, 1)
	go func() { done <- d.Serve(context.Background()) }()
	return done
}

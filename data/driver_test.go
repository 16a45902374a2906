package data

import (
	"context"
	"strings"
	"testing"
)

type stubDriver struct {
	name string
}

func (d *stubDriver) Name() string                              { return d.name }
func (d *stubDriver) Connect(context.Context, any) (any, error) { return "conn", nil }
func (d *stubDriver) Close(any) error                           { return nil }
func (d *stubDriver) Ping(context.Context, any) error           { return nil }

func expectPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	fn()
}

func TestRegistry(t *testing.T) {
	r := newRegistry("database")
	r.register(&stubDriver{name: "sqlite"})
	r.register(&stubDriver{name: "postgres"})

	d, err := r.get("sqlite")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if d.Name() != "sqlite" {
		t.Errorf("name = %q", d.Name())
	}

	_, err = r.get("mysql")
	if err == nil {
		t.Fatal("expected error for unregistered driver")
	}
	if !strings.Contains(err.Error(), "[postgres sqlite]") || !strings.Contains(err.Error(), "data/mysql") {
		t.Errorf("error should list registered drivers and the import hint: %v", err)
	}
}

func TestRegistryRejectsBadDrivers(t *testing.T) {
	r := newRegistry("cache")
	r.register(&stubDriver{name: "redis"})

	expectPanic(t, func() { r.register(nil) })
	expectPanic(t, func() { r.register(&stubDriver{}) })
	expectPanic(t, func() { r.register(&stubDriver{name: "redis"}) })
}

func TestGetCacheDriverNotFound(t *testing.T) {
	if _, err := GetCacheDriver("memcached"); err == nil {
		t.Error("expected error for unregistered cache driver")
	}
}

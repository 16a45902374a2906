package data

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Drivers register themselves from init(), following database/sql, and are
// looked up by the name given in configuration.

// Driver opens and checks one kind of backend connection.
type Driver interface {
	// Name is the configuration identifier, e.g. "postgres".
	Name() string
	Connect(ctx context.Context, cfg any) (any, error)
	Close(conn any) error
	Ping(ctx context.Context, conn any) error
}

// DatabaseDriver connects a relational database and returns a *sql.DB.
type DatabaseDriver = Driver

// CacheDriver connects a key-value store and returns a *redis.Client.
type CacheDriver = Driver

type registry struct {
	kind    string
	mu      sync.RWMutex
	drivers map[string]Driver
}

func newRegistry(kind string) *registry {
	return &registry{kind: kind, drivers: make(map[string]Driver)}
}

func (r *registry) register(d Driver) {
	if d == nil {
		panic(fmt.Sprintf("data: %s driver is nil", r.kind))
	}
	name := d.Name()
	if name == "" {
		panic(fmt.Sprintf("data: %s driver name is empty", r.kind))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.drivers[name]; exists {
		panic(fmt.Sprintf("data: %s driver %s registered twice", r.kind, name))
	}
	r.drivers[name] = d
}

func (r *registry) get(name string) (Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if d, ok := r.drivers[name]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("data: %s driver %q not registered (registered: %v); import _ \"github.com/ncobase/recruit/data/%s\"",
		r.kind, name, r.namesLocked(), name)
}

func (r *registry) namesLocked() []string {
	names := make([]string, 0, len(r.drivers))
	for name := range r.drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var (
	databaseDrivers = newRegistry("database")
	cacheDrivers    = newRegistry("cache")
)

// RegisterDatabaseDriver makes a database driver available by name. It
// panics if driver is nil, unnamed or registered twice.
func RegisterDatabaseDriver(driver DatabaseDriver) { databaseDrivers.register(driver) }

// RegisterCacheDriver makes a cache driver available by name.
func RegisterCacheDriver(driver CacheDriver) { cacheDrivers.register(driver) }

// GetDatabaseDriver returns the database driver registered as name.
func GetDatabaseDriver(name string) (DatabaseDriver, error) { return databaseDrivers.get(name) }

// GetCacheDriver returns the cache driver registered as name.
func GetCacheDriver(name string) (CacheDriver, error) { return cacheDrivers.get(name) }

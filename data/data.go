package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/ncobase/recruit/data/config"
	"github.com/ncobase/recruit/data/metrics"
	"github.com/redis/go-redis/v9"
)

type ContextKey string

const (
	ContextKeyTransaction ContextKey = "tx"
)

// ErrClosed is returned by operations on a closed data layer.
var ErrClosed = errors.New("data layer is closed")

// Data owns the process's storage connections. It is created once at start
// and passed explicitly to every repository.
type Data struct {
	db    *sql.DB
	redis *redis.Client

	dbDriver    DatabaseDriver
	cacheDriver CacheDriver

	collector metrics.Collector
	mu        sync.RWMutex
	closed    bool
}

// Option function type for configuring Data
type Option func(*Data)

// WithMetricsCollector sets the metrics collector
func WithMetricsCollector(collector metrics.Collector) Option {
	return func(d *Data) {
		if collector != nil {
			d.collector = collector
		}
	}
}

// WithRedis attaches an existing redis client.
func WithRedis(client *redis.Client) Option {
	return func(d *Data) {
		d.redis = client
	}
}

// New connects the configured database (and redis, when an address is set)
// through the registered drivers.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Data, func(), error) {
	if cfg == nil || cfg.Database == nil || cfg.Database.Master == nil {
		return nil, nil, errors.New("data: database configuration is missing")
	}

	dbDriver, err := GetDatabaseDriver(cfg.Database.Master.Driver)
	if err != nil {
		return nil, nil, err
	}
	conn, err := dbDriver.Connect(ctx, cfg.Database.Master)
	if err != nil {
		return nil, nil, err
	}
	db, ok := conn.(*sql.DB)
	if !ok {
		_ = dbDriver.Close(conn)
		return nil, nil, fmt.Errorf("data: driver %s returned %T, expected *sql.DB", dbDriver.Name(), conn)
	}

	d := &Data{db: db, dbDriver: dbDriver, collector: metrics.NoOpCollector{}}
	for _, opt := range opts {
		opt(d)
	}

	if cfg.Redis != nil && cfg.Redis.Addr != "" && d.redis == nil {
		cacheDriver, err := GetCacheDriver("redis")
		if err != nil {
			d.Close()
			return nil, nil, err
		}
		rc, err := cacheDriver.Connect(ctx, cfg.Redis)
		if err != nil {
			d.Close()
			return nil, nil, err
		}
		d.redis = rc.(*redis.Client)
		d.cacheDriver = cacheDriver
	}

	cleanup := func() {
		if errs := d.Close(); len(errs) > 0 {
			fmt.Printf("data cleanup errors: %v\n", errs)
		}
	}
	return d, cleanup, nil
}

// NewWithDB wraps an already opened database.
func NewWithDB(db *sql.DB, opts ...Option) *Data {
	d := &Data{db: db, collector: metrics.NoOpCollector{}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DB returns the database handle.
func (d *Data) DB() *sql.DB {
	return d.db
}

// Redis returns the redis client, nil when redis is not configured.
func (d *Data) Redis() *redis.Client {
	return d.redis
}

// Collector returns the metrics collector
func (d *Data) Collector() metrics.Collector {
	return d.collector
}

// Close closes all data connections
func (d *Data) Close() []error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	var errs []error
	if d.redis != nil && d.cacheDriver != nil {
		if err := d.cacheDriver.Close(d.redis); err != nil {
			errs = append(errs, err)
		}
	}
	if d.db != nil {
		var err error
		if d.dbDriver != nil {
			err = d.dbDriver.Close(d.db)
		} else {
			err = d.db.Close()
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (d *Data) isClosed() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.closed
}

package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ncobase/recruit/data/config"
)

// Pool holds pool sizes applied when a node leaves them unset.
type Pool struct {
	MaxIdle int
	MaxOpen int
}

// OpenSQL opens dsn with the database/sql driver sqlDriver, sizes the pool
// from node and pings it. Drivers call it from Connect.
func OpenSQL(ctx context.Context, sqlDriver, dsn string, node *config.DBNode, defaults Pool) (*sql.DB, error) {
	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", sqlDriver, err)
	}

	idle, open := defaults.MaxIdle, defaults.MaxOpen
	if node.MaxIdleConn > 0 {
		idle = node.MaxIdleConn
	}
	if node.MaxOpenConn > 0 {
		open = node.MaxOpenConn
	}
	if idle > 0 {
		db.SetMaxIdleConns(idle)
	}
	if open > 0 {
		db.SetMaxOpenConns(open)
	}
	if node.ConnMaxLifeTime > 0 {
		db.SetConnMaxLifetime(node.ConnMaxLifeTime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: ping: %w", sqlDriver, err)
	}
	return db, nil
}

// NodeOf checks that cfg is a database node with a source.
func NodeOf(name string, cfg any) (*config.DBNode, error) {
	node, ok := cfg.(*config.DBNode)
	if !ok {
		return nil, fmt.Errorf("%s: expected *config.DBNode, got %T", name, cfg)
	}
	if node.Source == "" {
		return nil, fmt.Errorf("%s: connection source is empty", name)
	}
	return node, nil
}

// SQLOf unwraps a connection returned by OpenSQL.
func SQLOf(name string, conn any) (*sql.DB, error) {
	db, ok := conn.(*sql.DB)
	if !ok {
		return nil, fmt.Errorf("%s: expected *sql.DB, got %T", name, conn)
	}
	return db, nil
}

// Package sqlite registers a SQLite driver with the data package, using
// mattn/go-sqlite3 (CGO) under database/sql:
//
//	import _ "github.com/ncobase/recruit/data/sqlite"
//
// Connections enable foreign keys and a busy timeout, and file databases
// use WAL journaling, so conditional updates from concurrent requests wait
// for the write lock instead of failing with SQLITE_BUSY.
package sqlite

import (
	"context"
	"net/url"
	"strings"

	"github.com/ncobase/recruit/data"

	_ "github.com/mattn/go-sqlite3"
)

const name = "sqlite"

type driver struct{}

func (driver) Name() string { return name }

// Connect accepts a path or URI such as "file:recruit.db" or
// "file::memory:?cache=shared". SQLite serializes writers, so the pool
// defaults to one open connection.
func (driver) Connect(ctx context.Context, cfg any) (any, error) {
	node, err := data.NodeOf(name, cfg)
	if err != nil {
		return nil, err
	}
	return data.OpenSQL(ctx, "sqlite3", withPragmas(node.Source), node, data.Pool{MaxIdle: 2, MaxOpen: 1})
}

func (driver) Close(conn any) error {
	db, err := data.SQLOf(name, conn)
	if err != nil {
		return err
	}
	return db.Close()
}

func (driver) Ping(ctx context.Context, conn any) error {
	db, err := data.SQLOf(name, conn)
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// withPragmas adds the go-sqlite3 connection parameters the source does not
// already set.
func withPragmas(source string) string {
	base, rawQuery, _ := strings.Cut(source, "?")
	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		q = url.Values{}
	}
	set := func(k, v string) {
		if q.Get(k) == "" {
			q.Set(k, v)
		}
	}
	set("_foreign_keys", "on")
	set("_busy_timeout", "5000")
	if !strings.Contains(source, ":memory:") && q.Get("mode") != "memory" {
		set("_journal_mode", "WAL")
	}
	return base + "?" + q.Encode()
}

func init() {
	data.RegisterDatabaseDriver(driver{})
}

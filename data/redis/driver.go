// Package redis registers a go-redis cache driver with the data package:
//
//	import _ "github.com/ncobase/recruit/data/redis"
package redis

import (
	"context"
	"fmt"

	"github.com/ncobase/recruit/data"
	"github.com/ncobase/recruit/data/config"
	"github.com/redis/go-redis/v9"
)

type driver struct{}

func (driver) Name() string { return "redis" }

func (driver) Connect(ctx context.Context, cfg any) (any, error) {
	c, ok := cfg.(*config.Redis)
	if !ok {
		return nil, fmt.Errorf("redis: expected *config.Redis, got %T", cfg)
	}
	if c.Addr == "" {
		return nil, fmt.Errorf("redis: address is empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         c.Addr,
		Username:     c.Username,
		Password:     c.Password,
		DB:           c.Db,
		PoolSize:     c.PoolSize,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
		DialTimeout:  c.DialTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", c.Addr, err)
	}
	return client, nil
}

func (driver) Close(conn any) error {
	client, err := clientOf(conn)
	if err != nil {
		return err
	}
	return client.Close()
}

func (driver) Ping(ctx context.Context, conn any) error {
	client, err := clientOf(conn)
	if err != nil {
		return err
	}
	return client.Ping(ctx).Err()
}

func clientOf(conn any) (*redis.Client, error) {
	client, ok := conn.(*redis.Client)
	if !ok {
		return nil, fmt.Errorf("redis: expected *redis.Client, got %T", conn)
	}
	return client, nil
}

func init() {
	data.RegisterCacheDriver(driver{})
}

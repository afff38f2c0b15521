// Package kvstore opens the configured core.KeyValueStore backend.
package kvstore

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/acadify/core"
	boltstore "github.com/trezcool/acadify/storage/kvstore/bolt"
	inmemstore "github.com/trezcool/acadify/storage/kvstore/inmem"
	redisstore "github.com/trezcool/acadify/storage/kvstore/redis"
)

var ErrUnknownEngine = errors.New("unknown store engine")

// Open returns the store selected by conf.Engine and a func releasing it.
func Open(ctx context.Context, conf core.StoreConfig) (core.KeyValueStore, func() error, error) {
	noop := func() error { return nil }

	switch conf.Engine {
	case core.StoreMemory:
		return inmemstore.Open(), noop, nil
	case core.StoreBolt:
		s, err := boltstore.Open(conf.BoltPath, conf.BoltBucket, conf.BoltTimeout)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case core.StoreRedis:
		s := redisstore.Open(conf.RedisAddr, conf.RedisPassword, conf.RedisDB)
		if !s.Healthy(ctx) {
			_ = s.Close()
			return nil, nil, errors.Errorf("redis unreachable at %s", conf.RedisAddr)
		}
		return s, s.Close, nil
	}
	return nil, nil, errors.Wrapf(ErrUnknownEngine, "%q", conf.Engine)
}

package redis

import (
	"errors"
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/ideationmarket/goapi/base/ctx"
)

// Forever means the key is set without an expire
const Forever = time.Duration(-1)

var (
	// ErrNotFound is returned when the key does not exist
	ErrNotFound = errors.New("key not found")

	// ErrNoTTL is returned by TTL when the key exists but has no
	// associated expire
	ErrNoTTL = errors.New("key has no ttl")

	ErrGapTime                 = errors.New("in gap time, no pool available")
	ErrExpireNotExistOrTimeout = errors.New("key does not exist or the timeout could not be set")
)

type Service interface {
	Get(context ctx.Ctx, key string) ([]byte, error)
	Set(context ctx.Ctx, key string, val []byte, expire time.Duration) error
	SetNX(context ctx.Ctx, key string, val []byte, expire time.Duration) error
	Del(context ctx.Ctx, ks ...string) (int, error)
	Exists(context ctx.Ctx, key string) (bool, error)
	Expire(context ctx.Ctx, key string, ttl time.Duration) error
	TTL(context ctx.Ctx, key string) (int, error)
	Incr(context ctx.Ctx, key string) (int64, error)
	Incrby(context ctx.Ctx, key string, val int) (int64, error)
	GetConn() (redis.Conn, error)
	Name() string
}

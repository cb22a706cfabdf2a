package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
	// ErrUnsupportedDest is returned by Get when dest is neither *string nor *[]byte.
	ErrUnsupportedDest = errors.New("cache: unsupported destination type")
)

// Service is the key/value surface the state tables are built on.
// An expiration <= 0 keeps the entry until it is overwritten.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Exists(ctx context.Context, keys ...string) (bool, error)
	Health(ctx context.Context) error
	Close() error
}

// assign copies a raw payload into a *string or *[]byte destination.
func assign(dest interface{}, raw []byte) error {
	switch d := dest.(type) {
	case *string:
		*d = string(raw)
	case *[]byte:
		*d = append((*d)[:0], raw...)
	default:
		return ErrUnsupportedDest
	}
	return nil
}

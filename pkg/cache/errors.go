package cache

import "errors"

// ErrNotReady indicates the Redis connection has not been established.
var ErrNotReady = errors.New("cache not ready")

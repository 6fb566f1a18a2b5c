package repository

import "time"

// Option applies a configuration option to the RedisStore.
type Option func(*RedisStore)

// WithKey sets the redis key holding the save.
func WithKey(key string) Option {
	return func(s *RedisStore) {
		if key != "" {
			s.key = key
		}
	}
}

// WithTTL expires the save after ttl of inactivity. Zero keeps it forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *RedisStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

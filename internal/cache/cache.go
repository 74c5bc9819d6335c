package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the interface shared by the memory, disk and layered caches.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key from a request URL. The version segment lets a
// format change invalidate old entries wholesale.
func Key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "verdant:v1:" + hex.EncodeToString(hash[:])
}

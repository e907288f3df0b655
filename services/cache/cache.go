package cache

// Store represents a durable key-value cache. Entries never expire on their
// own and are never deleted by the core.
type Store interface {
	// Has reports whether a complete entry exists for the key
	Has(key string) bool

	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores the complete serialized value in one operation
	Set(key string, value []byte) error
}

package redis

const (
	// KeyPrefix namespaces every hubmarks key in a shared Redis DB
	KeyPrefix = "hubmarks:kv:"
)

// Key returns the Redis key for a storage key
func Key(name string) string {
	return KeyPrefix + name
}

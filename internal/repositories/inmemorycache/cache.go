package inmemorycache

// Cache is a process-local byte cache for hot, small payloads like the
// popularity candidate list served on cold start.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, data []byte) error
	Del(key string)
}

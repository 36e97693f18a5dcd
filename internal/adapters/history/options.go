package history

import "github.com/yoshikawa-river/keiba-features/pkg/logger"

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithShardCount sets the number of shards; values below 1 are ignored.
func WithShardCount(n int) MemoryOption {
	return func(s *MemoryStore) {
		if n >= 1 {
			s.shardCount = uint32(n)
		}
	}
}

// PostgresOption configures a PostgresAccessor.
type PostgresOption func(*PostgresAccessor)

// WithLogger sets the accessor's logger.
func WithLogger(l logger.Logger) PostgresOption {
	return func(a *PostgresAccessor) {
		a.log = l
	}
}

// WithTable overrides the participations table name.
func WithTable(name string) PostgresOption {
	return func(a *PostgresAccessor) {
		if name != "" {
			a.table = name
		}
	}
}

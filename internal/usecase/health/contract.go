package health

import "context"

// StorageChecker verifies the index storage is usable.
type StorageChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingChecker verifies embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

package redis

import (
	"context"
	"time"

	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/domain"
)

// BranchStoreInterface defines the interface for branch location operations.
type BranchStoreInterface interface {
	AddBranch(ctx context.Context, label string, coords domain.Coordinates) error
	NearestBranch(ctx context.Context, point domain.Coordinates) (*Branch, error)
	RemoveBranch(ctx context.Context, label string) error
}

// LockStoreInterface defines the interface for the payment creation latch.
type LockStoreInterface interface {
	AcquirePaymentLock(ctx context.Context, lineID string, ttl time.Duration) (bool, error)
	ReleasePaymentLock(ctx context.Context, lineID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ BranchStoreInterface = (*BranchStore)(nil)
	_ LockStoreInterface   = (*LockStore)(nil)
)

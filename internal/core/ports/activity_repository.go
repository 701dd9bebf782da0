package ports

import (
	"context"

	"github.com/pawhaven/adoption-api/internal/core/domain"
)

// ActivityFilter narrows the admin activity feed.
type ActivityFilter struct {
	Type  domain.ActivityType
	Page  int
	Limit int
}

// ActivityRepository appends to and reads the audit log. It never updates.
type ActivityRepository interface {
	Insert(ctx context.Context, a *domain.Activity) error
	List(ctx context.Context, filter ActivityFilter) ([]*domain.Activity, int64, error)
}

// ActivityRecorder accepts audit entries without blocking the caller.
type ActivityRecorder interface {
	Record(a domain.Activity)
}

package service

import (
	"context"
	"time"

	"github.com/pawhaven/adoption-api/internal/core/domain"
	"github.com/pawhaven/adoption-api/internal/core/ports"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type nopRecorder struct{}

func (nopRecorder) Record(domain.Activity) {}

func recorderOrNop(r ports.ActivityRecorder) ports.ActivityRecorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}

func activity(t domain.ActivityType, action, userID, description string, meta map[string]string) domain.Activity {
	return domain.Activity{
		Type:        t,
		Action:      action,
		Description: description,
		UserID:      userID,
		Metadata:    meta,
		CreatedAt:   time.Now().UTC(),
	}
}

// normalizePage clamps pagination input to sane bounds.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

type activityService struct {
	repo ports.ActivityRepository
}

// NewActivityService returns the read side of the audit log.
func NewActivityService(repo ports.ActivityRepository) ports.ActivityService {
	return &activityService{repo: repo}
}

func (s *activityService) Feed(ctx context.Context, filter ports.ActivityFilter) (*ports.ActivityPage, error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ports.ActivityPage{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pawhaven/adoption-api/internal/core/domain"
	"github.com/pawhaven/adoption-api/internal/core/ports"
)

const defaultSettingCategory = "general"

type settingService struct {
	repo     ports.SettingRepository
	activity ports.ActivityRecorder
}

func NewSettingService(repo ports.SettingRepository, activity ports.ActivityRecorder) ports.SettingService {
	return &settingService{repo: repo, activity: recorderOrNop(activity)}
}

func (s *settingService) List(ctx context.Context, category string) ([]*domain.Setting, error) {
	return s.repo.List(ctx, category)
}

// Public returns the allow-listed settings that are also flagged public.
func (s *settingService) Public(ctx context.Context) (map[string]string, error) {
	settings, err := s.repo.ListPublic(ctx, domain.PublicSettingKeys)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(settings))
	for _, st := range settings {
		if st.IsPublic {
			out[st.Key] = st.Value
		}
	}
	return out, nil
}

func (s *settingService) Put(ctx context.Context, actor *domain.User, key string, in ports.SettingInput) (*domain.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("%w: key is required", domain.ErrInvalidInput)
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = defaultSettingCategory
	}

	saved, err := s.repo.Upsert(ctx, &domain.Setting{
		Key:         key,
		Value:       in.Value,
		Category:    category,
		Description: strings.TrimSpace(in.Description),
		IsPublic:    in.IsPublic,
		UpdatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	s.activity.Record(activity(domain.ActivitySetting, "update", actor.ID, "set "+key,
		map[string]string{"key": key}))
	return saved, nil
}

func (s *settingService) Delete(ctx context.Context, actor *domain.User, key string) error {
	if err := s.repo.Delete(ctx, key); err != nil {
		return err
	}
	s.activity.Record(activity(domain.ActivitySetting, "delete", actor.ID, "removed "+key,
		map[string]string{"key": key}))
	return nil
}

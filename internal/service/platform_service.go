package service

import (
	"Postflow/internal/model"
	"Postflow/internal/repository"
	"context"
	log "log/slog"
)

type PlatformService interface {
	CreatePlatform(ctx context.Context, platform *model.Platform) (*model.Platform, error)
	GetPlatform(ctx context.Context, id uint64) (*model.Platform, error)
	ListPlatforms(ctx context.Context) ([]*model.Platform, error)
	UpdatePlatform(ctx context.Context, id uint64, update *model.Platform) (*model.Platform, error)
}

type PlatformServiceImpl struct {
	platformRepo repository.PlatformRepo
}

func NewPlatformService(platformRepo repository.PlatformRepo) PlatformService {
	return &PlatformServiceImpl{
		platformRepo: platformRepo,
	}
}

func (s *PlatformServiceImpl) CreatePlatform(ctx context.Context, platform *model.Platform) (*model.Platform, error) {
	if platform.Name == "" || platform.DisplayName == "" {
		return nil, ErrParamInvalid
	}
	if err := s.platformRepo.CreatePlatform(ctx, platform); err != nil {
		log.ErrorContext(ctx, "创建平台失败", "name", platform.Name, "err", err)
		return nil, UnExpectedError
	}
	return platform, nil
}

func (s *PlatformServiceImpl) GetPlatform(ctx context.Context, id uint64) (*model.Platform, error) {
	platform, err := s.platformRepo.GetPlatform(ctx, id)
	if err != nil {
		log.ErrorContext(ctx, "查询平台失败", "platform_id", id, "err", err)
		return nil, UnExpectedError
	}
	if platform == nil {
		return nil, ErrPlatformNotFound
	}
	return platform, nil
}

func (s *PlatformServiceImpl) ListPlatforms(ctx context.Context) ([]*model.Platform, error) {
	platforms, err := s.platformRepo.ListPlatforms(ctx)
	if err != nil {
		log.ErrorContext(ctx, "查询平台列表失败", "err", err)
		return nil, UnExpectedError
	}
	return platforms, nil
}

// UpdatePlatform 整体更新展示名、模板、投递地址与启停状态，name 不可变
func (s *PlatformServiceImpl) UpdatePlatform(ctx context.Context, id uint64, update *model.Platform) (*model.Platform, error) {
	platform, err := s.GetPlatform(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.DisplayName != "" {
		platform.DisplayName = update.DisplayName
	}
	platform.IsActive = update.IsActive
	platform.PromptTemplate = update.PromptTemplate
	platform.WebhookURL = update.WebhookURL

	if err := s.platformRepo.UpdatePlatform(ctx, platform); err != nil {
		log.ErrorContext(ctx, "更新平台失败", "platform_id", id, "err", err)
		return nil, UnExpectedError
	}
	return platform, nil
}

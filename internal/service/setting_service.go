package service

import (
	"Postflow/internal/model"
	"Postflow/internal/pkg/consts"
	"Postflow/internal/pkg/redis"
	"Postflow/internal/repository"
	"context"
	log "log/slog"
	"time"
)

const settingCacheTTL = 10 * time.Minute

type SettingService interface {
	GetValue(ctx context.Context, key string) (string, error)
	Update(ctx context.Context, key, value string) error
	List(ctx context.Context) ([]*model.Setting, error)
}

type SettingServiceImpl struct {
	settingRepo repository.SettingRepo
}

func NewSettingService(settingRepo repository.SettingRepo) SettingService {
	return &SettingServiceImpl{
		settingRepo: settingRepo,
	}
}

// GetValue 旁路缓存读取，键不存在时返回空串
func (s *SettingServiceImpl) GetValue(ctx context.Context, key string) (string, error) {
	cacheKey := consts.SettingCacheKey + key
	cached, err := redis.GetValue(ctx, cacheKey)
	if err != nil {
		log.WarnContext(ctx, "读取配置缓存失败", "key", key, "err", err)
	}
	if cached != "" {
		return cached, nil
	}

	value, err := s.settingRepo.GetSetting(ctx, key)
	if err != nil {
		log.ErrorContext(ctx, "查询配置项失败", "key", key, "err", err)
		return "", UnExpectedError
	}
	if value != "" {
		if err := redis.SetWithExpiration(ctx, cacheKey, value, settingCacheTTL); err != nil {
			log.WarnContext(ctx, "写入配置缓存失败", "key", key, "err", err)
		}
	}
	return value, nil
}

func (s *SettingServiceImpl) Update(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrParamInvalid
	}
	if err := s.settingRepo.UpsertSetting(ctx, key, value); err != nil {
		log.ErrorContext(ctx, "更新配置项失败", "key", key, "err", err)
		return UnExpectedError
	}
	if err := redis.DeleteKey(ctx, consts.SettingCacheKey+key); err != nil {
		log.WarnContext(ctx, "删除配置缓存失败", "key", key, "err", err)
	}
	return nil
}

func (s *SettingServiceImpl) List(ctx context.Context) ([]*model.Setting, error) {
	settings, err := s.settingRepo.ListSettings(ctx)
	if err != nil {
		log.ErrorContext(ctx, "查询配置列表失败", "err", err)
		return nil, UnExpectedError
	}
	return settings, nil
}

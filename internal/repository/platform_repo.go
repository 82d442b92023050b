package repository

import (
	"Postflow/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type PlatformRepo interface {
	CreatePlatform(ctx context.Context, platform *model.Platform) error
	GetPlatform(ctx context.Context, id uint64) (*model.Platform, error)
	ListPlatforms(ctx context.Context) ([]*model.Platform, error)
	ListActive(ctx context.Context) ([]*model.Platform, error)
	ListActiveByIds(ctx context.Context, ids []uint64) ([]*model.Platform, error)
	UpdatePlatform(ctx context.Context, platform *model.Platform) error
}

type PlatformRepoImpl struct {
	db *gorm.DB
}

func NewPlatformRepository(db *gorm.DB) PlatformRepo {
	return &PlatformRepoImpl{
		db: db,
	}
}

func (s PlatformRepoImpl) CreatePlatform(ctx context.Context, platform *model.Platform) error {
	return s.db.WithContext(ctx).Create(platform).Error
}

func (s PlatformRepoImpl) GetPlatform(ctx context.Context, id uint64) (*model.Platform, error) {
	var platform model.Platform
	err := s.db.WithContext(ctx).First(&platform, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &platform, nil
}

func (s PlatformRepoImpl) ListPlatforms(ctx context.Context) ([]*model.Platform, error) {
	var platforms []*model.Platform
	err := s.db.WithContext(ctx).Order("id ASC").Find(&platforms).Error
	if err != nil {
		return nil, err
	}
	return platforms, nil
}

func (s PlatformRepoImpl) ListActive(ctx context.Context) ([]*model.Platform, error) {
	var platforms []*model.Platform
	err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("id ASC").Find(&platforms).Error
	if err != nil {
		return nil, err
	}
	return platforms, nil
}

func (s PlatformRepoImpl) ListActiveByIds(ctx context.Context, ids []uint64) ([]*model.Platform, error) {
	var platforms []*model.Platform
	err := s.db.WithContext(ctx).Where("id IN ? AND is_active = ?", ids, true).Order("id ASC").Find(&platforms).Error
	if err != nil {
		return nil, err
	}
	return platforms, nil
}

func (s PlatformRepoImpl) UpdatePlatform(ctx context.Context, platform *model.Platform) error {
	return s.db.WithContext(ctx).Save(platform).Error
}

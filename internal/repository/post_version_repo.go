package repository

import (
	"Postflow/internal/model"
	"context"

	"gorm.io/gorm"
)

type PostVersionRepo interface {
	CreateVersion(ctx context.Context, version *model.PostVersion) error
	MaxVersion(ctx context.Context, postID uint64) (int, error)
	ListByPost(ctx context.Context, postID uint64) ([]*model.PostVersion, error)
	DeleteByPost(ctx context.Context, postID uint64) error
}

type PostVersionRepoImpl struct {
	db *gorm.DB
}

func NewPostVersionRepository(db *gorm.DB) PostVersionRepo {
	return &PostVersionRepoImpl{
		db: db,
	}
}

func (s PostVersionRepoImpl) CreateVersion(ctx context.Context, version *model.PostVersion) error {
	return s.db.WithContext(ctx).Create(version).Error
}

func (s PostVersionRepoImpl) MaxVersion(ctx context.Context, postID uint64) (int, error) {
	var max int
	err := s.db.WithContext(ctx).Model(&model.PostVersion{}).
		Where("post_id = ?", postID).
		Select("COALESCE(MAX(version), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max, nil
}

func (s PostVersionRepoImpl) ListByPost(ctx context.Context, postID uint64) ([]*model.PostVersion, error) {
	var versions []*model.PostVersion
	err := s.db.WithContext(ctx).Where("post_id = ?", postID).Order("version DESC").Find(&versions).Error
	if err != nil {
		return nil, err
	}
	return versions, nil
}

func (s PostVersionRepoImpl) DeleteByPost(ctx context.Context, postID uint64) error {
	return s.db.WithContext(ctx).Delete(&model.PostVersion{}, "post_id = ?", postID).Error
}

package repository

import (
	"Postflow/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepo interface {
	GetSetting(ctx context.Context, key string) (string, error)
	UpsertSetting(ctx context.Context, key, value string) error
	ListSettings(ctx context.Context) ([]*model.Setting, error)
}

type SettingRepoImpl struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) SettingRepo {
	return &SettingRepoImpl{
		db: db,
	}
}

func (s SettingRepoImpl) GetSetting(ctx context.Context, key string) (string, error) {
	var setting model.Setting
	err := s.db.WithContext(ctx).Where("`key` = ?", key).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return setting.Value, nil
}

func (s SettingRepoImpl) UpsertSetting(ctx context.Context, key, value string) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&model.Setting{Key: key, Value: value}).Error
}

func (s SettingRepoImpl) ListSettings(ctx context.Context) ([]*model.Setting, error) {
	var settings []*model.Setting
	err := s.db.WithContext(ctx).Order("`key` ASC").Find(&settings).Error
	if err != nil {
		return nil, err
	}
	return settings, nil
}

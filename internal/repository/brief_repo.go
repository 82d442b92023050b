package repository

import (
	"Postflow/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type BriefRepo interface {
	CreateBrief(ctx context.Context, brief *model.Brief, docs []*model.BriefDocument) error
	GetBrief(ctx context.Context, id uint64) (*model.Brief, error)
	GetBriefBySlug(ctx context.Context, slug string) (*model.Brief, error)
	ListBriefs(ctx context.Context, limit, offset int) ([]*model.Brief, error)
	DeleteBrief(ctx context.Context, id uint64) error
}

type BriefRepoImpl struct {
	db *gorm.DB
}

func NewBriefRepository(db *gorm.DB) BriefRepo {
	return &BriefRepoImpl{
		db: db,
	}
}

func (s BriefRepoImpl) CreateBrief(ctx context.Context, brief *model.Brief, docs []*model.BriefDocument) error {
	if len(docs) == 0 {
		return s.db.WithContext(ctx).Create(brief).Error
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(brief).Error; err != nil {
			return err
		}
		for _, doc := range docs {
			doc.BriefID = brief.ID
		}
		return tx.Create(docs).Error
	})
}

func (s BriefRepoImpl) GetBrief(ctx context.Context, id uint64) (*model.Brief, error) {
	var brief model.Brief
	err := s.db.WithContext(ctx).Preload("Documents").First(&brief, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &brief, nil
}

func (s BriefRepoImpl) GetBriefBySlug(ctx context.Context, slug string) (*model.Brief, error) {
	var brief model.Brief
	err := s.db.WithContext(ctx).Preload("Documents").Where("slug = ?", slug).First(&brief).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &brief, nil
}

func (s BriefRepoImpl) ListBriefs(ctx context.Context, limit, offset int) ([]*model.Brief, error) {
	var briefs []*model.Brief
	err := s.db.WithContext(ctx).Order("id DESC").Limit(limit).Offset(offset).Find(&briefs).Error
	if err != nil {
		return nil, err
	}
	return briefs, nil
}

func (s BriefRepoImpl) DeleteBrief(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.BriefDocument{}, "brief_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Brief{}, id).Error
	})
}

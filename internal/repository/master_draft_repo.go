package repository

import (
	"Postflow/internal/model"
	"Postflow/internal/pkg/consts"
	"context"
	"errors"

	"gorm.io/gorm"
)

type MasterDraftRepo interface {
	CreateDraft(ctx context.Context, draft *model.MasterDraft) error
	GetDraft(ctx context.Context, id uint64) (*model.MasterDraft, error)
	MaxVersion(ctx context.Context, briefID uint64) (int, error)
	ListByBrief(ctx context.Context, briefID uint64) ([]*model.MasterDraft, error)
	LatestByBrief(ctx context.Context, briefID uint64) (*model.MasterDraft, error)
	ApproveDraft(ctx context.Context, id uint64) (bool, error)
}

type MasterDraftRepoImpl struct {
	db *gorm.DB
}

func NewMasterDraftRepository(db *gorm.DB) MasterDraftRepo {
	return &MasterDraftRepoImpl{
		db: db,
	}
}

func (s MasterDraftRepoImpl) CreateDraft(ctx context.Context, draft *model.MasterDraft) error {
	return s.db.WithContext(ctx).Create(draft).Error
}

func (s MasterDraftRepoImpl) GetDraft(ctx context.Context, id uint64) (*model.MasterDraft, error) {
	var draft model.MasterDraft
	err := s.db.WithContext(ctx).First(&draft, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &draft, nil
}

func (s MasterDraftRepoImpl) MaxVersion(ctx context.Context, briefID uint64) (int, error) {
	var max int
	err := s.db.WithContext(ctx).Model(&model.MasterDraft{}).
		Where("brief_id = ?", briefID).
		Select("COALESCE(MAX(version), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max, nil
}

func (s MasterDraftRepoImpl) ListByBrief(ctx context.Context, briefID uint64) ([]*model.MasterDraft, error) {
	var drafts []*model.MasterDraft
	err := s.db.WithContext(ctx).Where("brief_id = ?", briefID).Order("version DESC").Find(&drafts).Error
	if err != nil {
		return nil, err
	}
	return drafts, nil
}

func (s MasterDraftRepoImpl) LatestByBrief(ctx context.Context, briefID uint64) (*model.MasterDraft, error) {
	var draft model.MasterDraft
	err := s.db.WithContext(ctx).Where("brief_id = ?", briefID).Order("version DESC").First(&draft).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &draft, nil
}

// ApproveDraft 条件更新：仅当仍为 draft 时置为 approved。
// 返回 false 表示没有行被更新（已是 approved 或不存在）。
func (s MasterDraftRepoImpl) ApproveDraft(ctx context.Context, id uint64) (bool, error) {
	result := s.db.WithContext(ctx).Model(&model.MasterDraft{}).
		Where("id = ? AND status = ?", id, consts.DraftStatusDraft).
		Update("status", consts.DraftStatusApproved)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

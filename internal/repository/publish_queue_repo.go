package repository

import (
	"Postflow/internal/model"
	"Postflow/internal/pkg/consts"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type PublishQueueRepo interface {
	CreateEntry(ctx context.Context, entry *model.PublishQueue) error
	GetPendingByPost(ctx context.Context, postID uint64) (*model.PublishQueue, error)
	GetLatestByPost(ctx context.Context, postID uint64) (*model.PublishQueue, error)
	RecordFailure(ctx context.Context, id uint64, errMsg string, nextRetryAt *time.Time, terminal bool) (bool, error)
	MarkCompleted(ctx context.Context, postID uint64) (bool, error)
	ListDueRetries(ctx context.Context, now time.Time) ([]*model.PublishQueue, error)
}

type PublishQueueRepoImpl struct {
	db *gorm.DB
}

func NewPublishQueueRepository(db *gorm.DB) PublishQueueRepo {
	return &PublishQueueRepoImpl{
		db: db,
	}
}

func (s PublishQueueRepoImpl) CreateEntry(ctx context.Context, entry *model.PublishQueue) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

// GetPendingByPost 返回该帖子当前活跃的血缘记录（最新的 pending 条目）
func (s PublishQueueRepoImpl) GetPendingByPost(ctx context.Context, postID uint64) (*model.PublishQueue, error) {
	var entry model.PublishQueue
	err := s.db.WithContext(ctx).
		Where("post_id = ? AND status = ?", postID, consts.QueueStatusPending).
		Order("id DESC").First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// GetLatestByPost 返回该帖子最近一条血缘记录，不论状态。回调凭证校验用。
func (s PublishQueueRepoImpl) GetLatestByPost(ctx context.Context, postID uint64) (*model.PublishQueue, error) {
	var entry model.PublishQueue
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("id DESC").First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// RecordFailure 单条 UPDATE 完成一次失败记账：attempts 自增、记录错误与下次重试时间，
// terminal 时同时把血缘置为终态 failed。仅在仍为 pending 时生效。
func (s PublishQueueRepoImpl) RecordFailure(ctx context.Context, id uint64, errMsg string, nextRetryAt *time.Time, terminal bool) (bool, error) {
	updates := map[string]interface{}{
		"attempts":   gorm.Expr("attempts + 1"),
		"last_error": errMsg,
	}
	if terminal {
		updates["status"] = consts.QueueStatusFailed
		updates["next_retry_at"] = nil
	} else {
		updates["next_retry_at"] = nextRetryAt
	}

	result := s.db.WithContext(ctx).Model(&model.PublishQueue{}).
		Where("id = ? AND status = ?", id, consts.QueueStatusPending).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkCompleted 将该帖子 pending 血缘置为 completed
func (s PublishQueueRepoImpl) MarkCompleted(ctx context.Context, postID uint64) (bool, error) {
	now := time.Now()
	result := s.db.WithContext(ctx).Model(&model.PublishQueue{}).
		Where("post_id = ? AND status = ?", postID, consts.QueueStatusPending).
		Updates(map[string]interface{}{
			"status":        consts.QueueStatusCompleted,
			"completed_at":  now,
			"next_retry_at": nil,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListDueRetries 捞取到期待重试的血缘：pending、至少失败过一次、退避时间已到
func (s PublishQueueRepoImpl) ListDueRetries(ctx context.Context, now time.Time) ([]*model.PublishQueue, error) {
	var entries []*model.PublishQueue
	err := s.db.WithContext(ctx).
		Where("status = ? AND attempts > 0 AND next_retry_at IS NOT NULL AND next_retry_at <= ?", consts.QueueStatusPending, now).
		Order("next_retry_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

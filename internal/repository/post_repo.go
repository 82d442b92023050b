package repository

import (
	"Postflow/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// PostPatch 显式枚举可选字段的补丁结构，一次性原子落库，
// 取代按请求动态拼接的部分更新。
type PostPatch struct {
	Content            *string
	EditedContent      *string
	ClearEditedContent bool
	IncrEditCount      bool
	Status             *string
	ScheduledAt        *time.Time
	GenerationTimeMs   *int64
	ApprovedAt         *time.Time
	ClearApprovedAt    bool
	PublishedAt        *time.Time
	PublishError       *string
	ClearPublishError  bool
	LinkURL            *string
}

func (p *PostPatch) toUpdates() map[string]interface{} {
	updates := map[string]interface{}{}
	if p.Content != nil {
		updates["content"] = *p.Content
	}
	if p.EditedContent != nil {
		updates["edited_content"] = *p.EditedContent
	}
	if p.ClearEditedContent {
		updates["edited_content"] = nil
	}
	if p.IncrEditCount {
		updates["edit_count"] = gorm.Expr("edit_count + 1")
	}
	if p.Status != nil {
		updates["status"] = *p.Status
	}
	if p.ScheduledAt != nil {
		updates["scheduled_at"] = *p.ScheduledAt
	}
	if p.GenerationTimeMs != nil {
		updates["generation_time_ms"] = *p.GenerationTimeMs
	}
	if p.ApprovedAt != nil {
		updates["approved_at"] = *p.ApprovedAt
	}
	if p.ClearApprovedAt {
		updates["approved_at"] = nil
	}
	if p.PublishedAt != nil {
		updates["published_at"] = *p.PublishedAt
	}
	if p.PublishError != nil {
		updates["publish_error"] = *p.PublishError
	}
	if p.ClearPublishError {
		updates["publish_error"] = nil
	}
	if p.LinkURL != nil {
		updates["link_url"] = *p.LinkURL
	}
	return updates
}

type PostRepo interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPost(ctx context.Context, id uint64) (*model.Post, error)
	ListByBrief(ctx context.Context, briefID uint64) ([]*model.Post, error)
	ListByBriefAndStatus(ctx context.Context, briefID uint64, status string) ([]*model.Post, error)
	UpdatePost(ctx context.Context, id uint64, patch *PostPatch) (bool, error)
	UpdatePostIfStatus(ctx context.Context, id uint64, expected []string, patch *PostPatch) (bool, error)
}

type PostRepoImpl struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepo {
	return &PostRepoImpl{
		db: db,
	}
}

func (s PostRepoImpl) CreatePost(ctx context.Context, post *model.Post) error {
	return s.db.WithContext(ctx).Create(post).Error
}

func (s PostRepoImpl) GetPost(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	err := s.db.WithContext(ctx).Preload("Brief").Preload("Brief.Documents").Preload("Platform").First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (s PostRepoImpl) ListByBrief(ctx context.Context, briefID uint64) ([]*model.Post, error) {
	var posts []*model.Post
	err := s.db.WithContext(ctx).Preload("Platform").Where("brief_id = ?", briefID).Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (s PostRepoImpl) ListByBriefAndStatus(ctx context.Context, briefID uint64, status string) ([]*model.Post, error) {
	var posts []*model.Post
	err := s.db.WithContext(ctx).Preload("Platform").
		Where("brief_id = ? AND status = ?", briefID, status).Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// UpdatePost 无条件补丁更新
func (s PostRepoImpl) UpdatePost(ctx context.Context, id uint64, patch *PostPatch) (bool, error) {
	updates := patch.toUpdates()
	if len(updates) == 0 {
		return false, nil
	}
	result := s.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdatePostIfStatus 条件补丁更新，仅当前状态在 expected 集合内才落库。
// 以单条 UPDATE ... WHERE status IN (...) 表达状态迁移前置条件，避免并发丢更新。
func (s PostRepoImpl) UpdatePostIfStatus(ctx context.Context, id uint64, expected []string, patch *PostPatch) (bool, error) {
	updates := patch.toUpdates()
	if len(updates) == 0 {
		return false, nil
	}
	result := s.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ? AND status IN ?", id, expected).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

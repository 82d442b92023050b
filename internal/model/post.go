package model

import (
	"time"
)

// Post 某个平台下由一条 brief 生成的单篇内容
type Post struct {
	ID            uint64  `gorm:"primaryKey" json:"id"`
	BriefID       uint64  `gorm:"not null;index:idx_brief_id" json:"brief_id"`
	PlatformID    uint64  `gorm:"not null;index:idx_platform_id" json:"platform_id"`
	MasterDraftID *uint64 `gorm:"index:idx_master_draft_id" json:"master_draft_id"`

	Content       string  `gorm:"not null" json:"content"`         // 原始生成结果
	EditedContent *string `gorm:"type:text" json:"edited_content"` // 人工覆盖稿
	Status        string  `gorm:"type:varchar(16);not null;default:draft" json:"status"`

	ScheduledAt      *time.Time `json:"scheduled_at"`
	EditCount        int        `gorm:"not null;default:0" json:"edit_count"`
	GenerationTimeMs int64      `gorm:"not null;default:0" json:"generation_time_ms"`
	ApprovedAt       *time.Time `json:"approved_at"`
	PublishedAt      *time.Time `json:"published_at"`
	PublishError     *string    `gorm:"type:text" json:"publish_error"`
	LinkURL          *string    `gorm:"type:varchar(512)" json:"link_url"` // 回调带回的正式链接

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联关系
	Brief    Brief    `gorm:"foreignKey:BriefID;references:ID" json:"-"`
	Platform Platform `gorm:"foreignKey:PlatformID;references:ID" json:"-"`
}

func (Post) TableName() string {
	return "posts"
}

// EffectiveContent 下游一律使用：有人工覆盖稿时用覆盖稿，否则用原始稿
func (p *Post) EffectiveContent() string {
	if p.EditedContent != nil && *p.EditedContent != "" {
		return *p.EditedContent
	}
	return p.Content
}

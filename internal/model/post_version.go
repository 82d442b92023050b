package model

import (
	"time"
)

// PostVersion 帖子修正历史快照。correct 追加，regenerate 整体清空。
type PostVersion struct {
	ID               uint64  `gorm:"primaryKey" json:"id"`
	PostID           uint64  `gorm:"not null;index:idx_post_id;uniqueIndex:uk_post_version,priority:1" json:"post_id"`
	Version          int     `gorm:"not null;uniqueIndex:uk_post_version,priority:2" json:"version"`
	Content          string  `gorm:"not null" json:"content"`
	CorrectionPrompt *string `gorm:"type:text" json:"correction_prompt"`

	CreatedAt time.Time `json:"created_at"`
}

func (PostVersion) TableName() string {
	return "post_versions"
}

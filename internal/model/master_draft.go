package model

import (
	"time"
)

// MasterDraft 主草稿。同一 brief 下版本从 1 开始连续递增，只追加不改写；
// 已批准的版本不可再被修正。
type MasterDraft struct {
	ID               uint64  `gorm:"primaryKey" json:"id"`
	BriefID          uint64  `gorm:"not null;index:idx_brief_id;uniqueIndex:uk_brief_version,priority:1" json:"brief_id"`
	Version          int     `gorm:"not null;uniqueIndex:uk_brief_version,priority:2" json:"version"`
	Content          string  `gorm:"not null" json:"content"`
	CorrectionPrompt *string `gorm:"type:text" json:"correction_prompt"` // 仅修正版本携带
	Status           string  `gorm:"type:varchar(16);not null;default:draft" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (MasterDraft) TableName() string {
	return "master_drafts"
}

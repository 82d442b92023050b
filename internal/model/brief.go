package model

import (
	"time"
)

// Brief 操作员撰写的原始素材。生成帖子后内容即视为冻结，
// 后续修改通过主草稿与帖子进行。
type Brief struct {
	ID                uint64  `gorm:"primaryKey" json:"id"`
	Title             string  `gorm:"type:varchar(255);not null" json:"title"`
	Slug              string  `gorm:"type:varchar(255);uniqueIndex" json:"slug"`
	Content           string  `gorm:"not null" json:"content"`
	LinkURL           *string `gorm:"type:varchar(512)" json:"link_url"`
	MediaObject       *string `gorm:"type:varchar(512)" json:"media_object"` // MinIO 对象键
	MediaType         *string `gorm:"type:varchar(64)" json:"media_type"`
	SelectedPlatforms *string `gorm:"type:text" json:"selected_platforms"` // 平台ID的JSON数组，空则使用全部启用平台

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联关系
	Documents []BriefDocument `gorm:"foreignKey:BriefID;references:ID" json:"documents"`
}

func (Brief) TableName() string {
	return "briefs"
}

// BriefDocument 附加的上下文文档，生成时可提取文本的格式会被拼入素材
type BriefDocument struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	BriefID   uint64    `gorm:"not null;index:idx_brief_id" json:"brief_id"`
	ObjectKey string    `gorm:"type:varchar(512);not null" json:"object_key"`
	MimeType  string    `gorm:"type:varchar(64);not null" json:"mime_type"`
	FileName  string    `gorm:"type:varchar(255);not null" json:"file_name"`
	CreatedAt time.Time `json:"created_at"`
}

func (BriefDocument) TableName() string {
	return "brief_documents"
}

package model

import (
	"time"
)

// Platform 投放目的地，自带提示词模板与投递地址
type Platform struct {
	ID             uint64  `gorm:"primaryKey" json:"id"`
	Name           string  `gorm:"type:varchar(64);not null;uniqueIndex" json:"name"`
	DisplayName    string  `gorm:"type:varchar(128);not null" json:"display_name"`
	IsActive       bool    `gorm:"not null;default:1" json:"is_active"`
	WebhookURL     *string `gorm:"type:varchar(512)" json:"webhook_url"`
	PromptTemplate string  `gorm:"type:text" json:"prompt_template"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Platform) TableName() string {
	return "platforms"
}

package model

import (
	"time"
)

// PublishQueue 一次发布血缘的重试记录。
// attempts 只增不减；pending 只会转移到 completed 或 failed，failed 为终态。
// 对终态 failed 的帖子再次发起发布会创建新的血缘记录，旧记录留作审计。
type PublishQueue struct {
	ID            uint64     `gorm:"primaryKey" json:"id"`
	PostID        uint64     `gorm:"not null;index:idx_post_id" json:"post_id"`
	Status        string     `gorm:"type:varchar(16);not null;default:pending" json:"status"`
	Attempts      int        `gorm:"not null;default:0" json:"attempts"`
	MaxAttempts   int        `gorm:"not null;default:3" json:"max_attempts"`
	LastError     *string    `gorm:"type:text" json:"last_error"`
	DispatchToken string     `gorm:"type:varchar(64);not null" json:"-"` // 回调必须回带的凭证
	NextRetryAt   *time.Time `gorm:"index:idx_next_retry" json:"next_retry_at"`
	CompletedAt   *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PublishQueue) TableName() string {
	return "publish_queue"
}

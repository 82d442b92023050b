package service

import (
	"Postflow/internal/pkg/consts"
	"Postflow/internal/pkg/redis"
	"context"
	log "log/slog"

	json "github.com/goccy/go-json"
)

// Notification 推送给前端的业务事件
type Notification struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	PostID  uint64 `json:"post_id,omitempty"`
	LinkURL string `json:"link_url,omitempty"`
}

// Notifier 通知出口。实现方负责扇出到所有在线连接，投递尽力而为，不回传失败。
type Notifier interface {
	Notify(ctx context.Context, n *Notification)
}

// RedisNotifier 经 Redis 频道广播，WS 网关订阅后推给在线客户端
type RedisNotifier struct{}

func NewRedisNotifier() Notifier {
	return RedisNotifier{}
}

func (RedisNotifier) Notify(ctx context.Context, n *Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		log.ErrorContext(ctx, "通知序列化失败", "err", err)
		return
	}
	if err := redis.Publish(ctx, consts.NotifyChannel, string(payload)); err != nil {
		log.WarnContext(ctx, "通知广播失败", "err", err)
	}
}

// NopNotifier 空实现，供不需要通知的调用方注入
type NopNotifier struct{}

func (NopNotifier) Notify(ctx context.Context, n *Notification) {}

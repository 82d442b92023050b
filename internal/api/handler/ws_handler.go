package handler

import (
	"Postflow/internal/pkg/consts"
	"Postflow/internal/pkg/redis"
	"context"
	log "log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WsHandler 通知网关：订阅 Redis 通知频道并推给在线客户端
type WsHandler struct{}

func NewWsHandler() *WsHandler {
	return &WsHandler{}
}

func (s *WsHandler) Connect(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WS 协议升级失败", "err", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	pubsub := redis.Subscribe(context.Background(), consts.NotifyChannel)
	defer func() {
		_ = pubsub.Close()
	}()

	log.Info("通知 WS 连接已建立", "remote", conn.RemoteAddr().String())

	stopChan := make(chan struct{})

	// 读循环：监听客户端主动断开
	go func() {
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				close(stopChan)
				return
			}
		}
	}()

	// 写循环：监听 Redis 并推送至客户端
	redisCh := pubsub.Channel()
	for {
		select {
		case msg := <-redisCh:
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				log.Error("WS 推送失败", "err", err)
				return
			}
		case <-stopChan:
			log.Info("通知 WS 连接已断开", "remote", conn.RemoteAddr().String())
			return
		}
	}
}

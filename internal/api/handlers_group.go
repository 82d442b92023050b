package api

import "Postflow/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	BriefHandler       *handler.BriefHandler
	MasterDraftHandler *handler.MasterDraftHandler
	PostHandler        *handler.PostHandler
	PublishHandler     *handler.PublishHandler
	PlatformHandler    *handler.PlatformHandler
	SettingHandler     *handler.SettingHandler
	WsHandler          *handler.WsHandler
}

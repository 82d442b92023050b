package api

import (
	"Postflow/internal/api/middleware"
	"Postflow/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		briefGroup := apiGroup.Group("/briefs")
		{
			briefGroup.POST("", group.BriefHandler.Create)
			briefGroup.GET("", group.BriefHandler.List)
			briefGroup.GET("/:brief_id", group.BriefHandler.Get)
			briefGroup.DELETE("/:brief_id", group.BriefHandler.Delete)

			// 主草稿链
			briefGroup.POST("/:brief_id/master", group.MasterDraftHandler.Generate)
			briefGroup.GET("/:brief_id/master", group.MasterDraftHandler.Latest)
			briefGroup.GET("/:brief_id/master/versions", group.MasterDraftHandler.ListVersions)

			// 平台扇出与批量操作
			briefGroup.POST("/:brief_id/generate", group.PostHandler.Generate)
			briefGroup.GET("/:brief_id/posts", group.PostHandler.ListByBrief)
			briefGroup.POST("/:brief_id/posts/approve", group.PostHandler.ApproveAll)
			briefGroup.POST("/:brief_id/posts/publish", group.PublishHandler.PublishAll)
		}

		// 对外内容页按 slug 取素材
		apiGroup.GET("/content/:slug", group.BriefHandler.GetBySlug)

		draftGroup := apiGroup.Group("/master-drafts")
		{
			draftGroup.POST("/:draft_id/correct", group.MasterDraftHandler.Correct)
			draftGroup.POST("/:draft_id/approve", group.MasterDraftHandler.Approve)
		}

		postGroup := apiGroup.Group("/posts")
		{
			postGroup.GET("/:post_id", group.PostHandler.Get)
			postGroup.PUT("/:post_id", group.PostHandler.UpdateContent)
			postGroup.POST("/:post_id/approve", group.PostHandler.Approve)
			postGroup.POST("/:post_id/correct", group.PostHandler.Correct)
			postGroup.POST("/:post_id/regenerate", group.PostHandler.Regenerate)
			postGroup.GET("/:post_id/versions", group.PostHandler.Versions)
			postGroup.POST("/:post_id/schedule", group.PostHandler.Schedule)

			postGroup.POST("/:post_id/publish", group.PublishHandler.Publish)
			postGroup.POST("/:post_id/publish/callback", group.PublishHandler.Callback)
		}

		platformGroup := apiGroup.Group("/platforms")
		{
			platformGroup.POST("", group.PlatformHandler.Create)
			platformGroup.GET("", group.PlatformHandler.List)
			platformGroup.GET("/:platform_id", group.PlatformHandler.Get)
			platformGroup.PUT("/:platform_id", group.PlatformHandler.Update)
		}

		settingGroup := apiGroup.Group("/settings")
		{
			settingGroup.GET("", group.SettingHandler.List)
			settingGroup.GET("/:key", group.SettingHandler.Get)
			settingGroup.PUT("/:key", group.SettingHandler.Update)
		}

		notifyGroup := apiGroup.Group("/notifications")
		{
			notifyGroup.GET("/ws", group.WsHandler.Connect)
		}
	}

	return r
}

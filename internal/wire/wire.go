package wire

import (
	"Postflow/internal/api"
	"Postflow/internal/api/config"
	"Postflow/internal/api/handler"
	"Postflow/internal/job"
	"Postflow/internal/pkg/cron"
	"Postflow/internal/pkg/llm"
	"Postflow/internal/repository"
	"Postflow/internal/service"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router  *gin.Engine
	DB      *gorm.DB
	CronMgr *cron.Manager
}

func BuildApplication(db *gorm.DB, cfg *config.Config) (*ApplicationContainer, error) {
	briefRepo := repository.NewBriefRepository(db)
	draftRepo := repository.NewMasterDraftRepository(db)
	platformRepo := repository.NewPlatformRepository(db)
	postRepo := repository.NewPostRepository(db)
	versionRepo := repository.NewPostVersionRepository(db)
	queueRepo := repository.NewPublishQueueRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	generator := llm.NewGenerator()
	notifier := service.NewRedisNotifier()

	settingService := service.NewSettingService(settingRepo)
	briefService := service.NewBriefService(briefRepo)
	draftService := service.NewMasterDraftService(briefRepo, draftRepo, generator, settingService)
	contentService := service.NewContentService(briefRepo, draftRepo, platformRepo, postRepo, generator, settingService, notifier)
	postService := service.NewPostService(postRepo, versionRepo, generator, settingService)
	platformService := service.NewPlatformService(platformRepo)
	publisherService := service.NewPublisherService(
		postRepo,
		queueRepo,
		settingService,
		service.NewRestyDeliverer(time.Duration(cfg.Publish.Timeout)*time.Second),
		service.NewRedisLocker(),
		notifier,
		&cfg.Publish,
	)

	handlers := &api.HandlersGroup{
		BriefHandler:       handler.NewBriefHandler(briefService),
		MasterDraftHandler: handler.NewMasterDraftHandler(draftService),
		PostHandler:        handler.NewPostHandler(postService, contentService),
		PublishHandler:     handler.NewPublishHandler(publisherService),
		PlatformHandler:    handler.NewPlatformHandler(platformService),
		SettingHandler:     handler.NewSettingHandler(settingService),
		WsHandler:          handler.NewWsHandler(),
	}

	router := api.SetupRouter(handlers)

	cronMgr := cron.NewCronManager(job.NewPublishRetryJob(publisherService))

	return &ApplicationContainer{
		Router:  router,
		DB:      db,
		CronMgr: cronMgr,
	}, nil
}

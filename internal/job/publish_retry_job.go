package job

import (
	"Postflow/internal/pkg/logger"
	"Postflow/internal/service"
	"context"
	log "log/slog"

	"github.com/google/uuid"
)

// PublishRetryJob 周期扫描到期的待重试投递
type PublishRetryJob struct {
	publisherService service.PublisherService
}

func NewPublishRetryJob(publisherService service.PublisherService) *PublishRetryJob {
	return &PublishRetryJob{
		publisherService: publisherService,
	}
}

func (s *PublishRetryJob) Run() {
	traceID := "job-publish-retry-" + uuid.NewString()
	ctx := logger.WithTraceID(context.Background(), traceID)

	attempted, err := s.publisherService.RetrySweep(ctx)
	if err != nil {
		log.ErrorContext(ctx, "发布重试扫描失败", "err", err)
		return
	}
	if attempted > 0 {
		log.InfoContext(ctx, "PublishRetryJob finished", "attempted", attempted)
	}
}

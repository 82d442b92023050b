package cron

import (
	"Postflow/internal/api/config"
	"Postflow/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine          *cron.Cron
	publishRetryJob *job.PublishRetryJob
}

func NewCronManager(publishRetryJob *job.PublishRetryJob) *Manager {
	return &Manager{
		engine:          cron.New(cron.WithSeconds()),
		publishRetryJob: publishRetryJob,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	spec := config.Cfg.Publish.SweepSpec
	if spec == "" {
		spec = "*/30 * * * * *"
	}
	if _, err := s.engine.AddJob(spec, s.publishRetryJob); err != nil {
		return err
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	s.engine.Stop()
}

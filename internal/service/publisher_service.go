package service

import (
	"Postflow/internal/api/config"
	"Postflow/internal/model"
	"Postflow/internal/pkg/consts"
	"Postflow/internal/pkg/minio"
	"Postflow/internal/pkg/redis"
	"Postflow/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// DispatchPayload 投递给发布执行方的请求体
type DispatchPayload struct {
	PostID        uint64 `json:"post_id"`
	Platform      string `json:"platform"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	LinkURL       string `json:"link_url,omitempty"`
	MediaURL      string `json:"media_url,omitempty"`
	DispatchToken string `json:"dispatch_token"`
	Attempt       int    `json:"attempt"`
}

// Deliverer 把帖子内容投递给外部发布执行方
type Deliverer interface {
	Deliver(ctx context.Context, url string, payload *DispatchPayload) error
}

type restyDeliverer struct {
	client *resty.Client
}

func NewRestyDeliverer(timeout time.Duration) Deliverer {
	return &restyDeliverer{
		client: resty.New().SetTimeout(timeout),
	}
}

func (d *restyDeliverer) Deliver(ctx context.Context, url string, payload *DispatchPayload) error {
	resp, err := d.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(url)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("投递端返回 %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// Locker 单帖发布互斥锁
type Locker interface {
	TryLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key, value string)
}

type redisLocker struct{}

func NewRedisLocker() Locker {
	return redisLocker{}
}

func (redisLocker) TryLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return redis.TryLock(ctx, key, value, ttl, 0)
}

func (redisLocker) Unlock(ctx context.Context, key, value string) {
	redis.UnLock(ctx, key, value)
}

// CallbackResult 发布执行方异步回报的最终结论
type CallbackResult struct {
	Status        string
	Message       string
	LinkURL       string
	DispatchToken string
}

// PublishOutcome 批量发布中单个帖子的投递结果
type PublishOutcome struct {
	PostID    uint64 `json:"post_id"`
	Platform  string `json:"platform,omitempty"`
	Published bool   `json:"published"`
	Error     string `json:"error,omitempty"`
}

type PublisherService interface {
	Publish(ctx context.Context, postID uint64) error
	PublishAll(ctx context.Context, briefID uint64) ([]*PublishOutcome, error)
	RetrySweep(ctx context.Context) (int, error)
	Reconcile(ctx context.Context, postID uint64, result *CallbackResult) error
}

type PublisherServiceImpl struct {
	postRepo   repository.PostRepo
	queueRepo  repository.PublishQueueRepo
	settingSvc SettingService
	deliverer  Deliverer
	locker     Locker
	notifier   Notifier
	cfg        *config.PublishConfig
}

func NewPublisherService(
	postRepo repository.PostRepo,
	queueRepo repository.PublishQueueRepo,
	settingSvc SettingService,
	deliverer Deliverer,
	locker Locker,
	notifier Notifier,
	cfg *config.PublishConfig,
) PublisherService {
	return &PublisherServiceImpl{
		postRepo:   postRepo,
		queueRepo:  queueRepo,
		settingSvc: settingSvc,
		deliverer:  deliverer,
		locker:     locker,
		notifier:   notifier,
		cfg:        cfg,
	}
}

// Publish 发起一次投递。传输成功即置为 published 并完结血缘，
// 后续回调只做确认或改写。已终态失败的帖子允许再次发布，
// 此时开启一条全新的血缘记录，旧记录留作审计。
func (s *PublisherServiceImpl) Publish(ctx context.Context, postID uint64) error {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		log.ErrorContext(ctx, "查询帖子失败", "post_id", postID, "err", err)
		return UnExpectedError
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.Status != consts.PostStatusApproved && post.Status != consts.PostStatusFailed {
		return ErrPostStateConflict
	}

	sinkURL, err := s.resolveSink(ctx, &post.Platform)
	if err != nil {
		return err
	}

	lockKey := consts.PublishLock + strconv.FormatUint(postID, 10)
	lockVal := uuid.NewString()
	locked, err := s.locker.TryLock(ctx, lockKey, lockVal, time.Duration(s.cfg.LockTTL)*time.Second)
	if err != nil {
		log.ErrorContext(ctx, "获取发布锁失败", "post_id", postID, "err", err)
		return UnExpectedError
	}
	if !locked {
		return ErrPublishInFlight
	}
	defer s.locker.Unlock(ctx, lockKey, lockVal)

	entry, err := s.queueRepo.GetPendingByPost(ctx, postID)
	if err != nil {
		log.ErrorContext(ctx, "查询发布队列失败", "post_id", postID, "err", err)
		return UnExpectedError
	}
	if entry == nil {
		entry = &model.PublishQueue{
			PostID:        postID,
			Status:        consts.QueueStatusPending,
			MaxAttempts:   s.cfg.MaxAttempts,
			DispatchToken: uuid.NewString(),
		}
		if err := s.queueRepo.CreateEntry(ctx, entry); err != nil {
			log.ErrorContext(ctx, "创建发布队列记录失败", "post_id", postID, "err", err)
			return UnExpectedError
		}
		// 终态失败后的再发布：帖子先拉回 approved 再走新血缘投递
		if post.Status == consts.PostStatusFailed {
			approved := consts.PostStatusApproved
			if _, err := s.postRepo.UpdatePostIfStatus(ctx, postID,
				[]string{consts.PostStatusFailed},
				&repository.PostPatch{Status: &approved, ClearPublishError: true}); err != nil {
				log.ErrorContext(ctx, "重置帖子状态失败", "post_id", postID, "err", err)
				return UnExpectedError
			}
		}
	}

	return s.attempt(ctx, post, sinkURL, entry)
}

// PublishAll 批量投递素材下所有已批准帖子，逐个发布，互不影响
func (s *PublisherServiceImpl) PublishAll(ctx context.Context, briefID uint64) ([]*PublishOutcome, error) {
	posts, err := s.postRepo.ListByBriefAndStatus(ctx, briefID, consts.PostStatusApproved)
	if err != nil {
		log.ErrorContext(ctx, "查询帖子列表失败", "brief_id", briefID, "err", err)
		return nil, UnExpectedError
	}

	outcomes := make([]*PublishOutcome, 0, len(posts))
	for _, post := range posts {
		outcome := &PublishOutcome{PostID: post.ID, Platform: post.Platform.Name}
		if err := s.Publish(ctx, post.ID); err != nil {
			outcome.Error = err.Error()
		} else {
			outcome.Published = true
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// RetrySweep 扫描到期的待重试血缘并重新投递，返回尝试的条数。
// 被别的发布流程锁住的帖子直接跳过，等下一轮。
func (s *PublisherServiceImpl) RetrySweep(ctx context.Context) (int, error) {
	entries, err := s.queueRepo.ListDueRetries(ctx, time.Now())
	if err != nil {
		log.ErrorContext(ctx, "扫描待重试队列失败", "err", err)
		return 0, UnExpectedError
	}

	attempted := 0
	for _, entry := range entries {
		post, err := s.postRepo.GetPost(ctx, entry.PostID)
		if err != nil {
			log.ErrorContext(ctx, "查询帖子失败", "post_id", entry.PostID, "err", err)
			continue
		}
		if post == nil || post.Status != consts.PostStatusApproved {
			continue
		}

		sinkURL, err := s.resolveSink(ctx, &post.Platform)
		if err != nil {
			log.WarnContext(ctx, "重试跳过：投递地址不可用", "post_id", post.ID, "err", err)
			continue
		}

		lockKey := consts.PublishLock + strconv.FormatUint(post.ID, 10)
		lockVal := uuid.NewString()
		locked, err := s.locker.TryLock(ctx, lockKey, lockVal, time.Duration(s.cfg.LockTTL)*time.Second)
		if err != nil || !locked {
			continue
		}
		if err := s.attempt(ctx, post, sinkURL, entry); err != nil {
			log.WarnContext(ctx, "重试投递失败", "post_id", post.ID, "attempts", entry.Attempts+1, "err", err)
		}
		s.locker.Unlock(ctx, lockKey, lockVal)
		attempted++
	}
	if len(entries) > 0 {
		log.InfoContext(ctx, "重试扫描完成", "due", len(entries), "attempted", attempted)
	}
	return attempted, nil
}

// Reconcile 消化执行方的异步回调，对同步投递结论做确认或改写。
// 帖子状态迁移走条件更新，重复回调命中不了前置状态，静默幂等返回。
func (s *PublisherServiceImpl) Reconcile(ctx context.Context, postID uint64, result *CallbackResult) error {
	if result.Status != consts.CallbackPublished && result.Status != consts.CallbackFailed {
		return ErrInvalidCallbackStatus
	}

	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		log.ErrorContext(ctx, "查询帖子失败", "post_id", postID, "err", err)
		return UnExpectedError
	}
	if post == nil {
		return ErrPostNotFound
	}

	entry, err := s.queueRepo.GetLatestByPost(ctx, postID)
	if err != nil {
		log.ErrorContext(ctx, "查询发布队列失败", "post_id", postID, "err", err)
		return UnExpectedError
	}
	if entry != nil && entry.DispatchToken != "" && result.DispatchToken != entry.DispatchToken {
		log.WarnContext(ctx, "回调凭证不匹配", "post_id", postID)
		return ErrDispatchTokenMismatch
	}

	if result.Status == consts.CallbackPublished {
		return s.reconcilePublished(ctx, post, result)
	}
	return s.reconcileFailed(ctx, post, entry, result)
}

func (s *PublisherServiceImpl) reconcilePublished(ctx context.Context, post *model.Post, result *CallbackResult) error {
	now := time.Now()
	published := consts.PostStatusPublished
	patch := &repository.PostPatch{
		Status:            &published,
		PublishedAt:       &now,
		ClearPublishError: true,
	}
	if result.LinkURL != "" {
		patch.LinkURL = &result.LinkURL
	}

	if _, err := s.postRepo.UpdatePostIfStatus(ctx, post.ID,
		[]string{consts.PostStatusApproved, consts.PostStatusPublished, consts.PostStatusFailed},
		patch); err != nil {
		log.ErrorContext(ctx, "更新帖子状态失败", "post_id", post.ID, "err", err)
		return UnExpectedError
	}

	// 血缘还挂在 pending 说明同步投递没走完，这条回调才是首个成功结论
	completed, err := s.queueRepo.MarkCompleted(ctx, post.ID)
	if err != nil {
		log.ErrorContext(ctx, "完成发布队列记录失败", "post_id", post.ID, "err", err)
	}
	if !completed {
		return nil
	}
	log.InfoContext(ctx, "回调确认发布成功", "post_id", post.ID, "platform", post.Platform.Name, "link", result.LinkURL)
	s.notifier.Notify(ctx, &Notification{
		Type:    consts.NotifySuccess,
		Message: fmt.Sprintf("帖子已发布到 %s", post.Platform.DisplayName),
		PostID:  post.ID,
		LinkURL: result.LinkURL,
	})
	return nil
}

func (s *PublisherServiceImpl) reconcileFailed(ctx context.Context, post *model.Post, entry *model.PublishQueue, result *CallbackResult) error {
	msg := result.Message
	if msg == "" {
		msg = "发布执行方回报失败"
	}

	failed := consts.PostStatusFailed
	changed, err := s.postRepo.UpdatePostIfStatus(ctx, post.ID,
		[]string{consts.PostStatusApproved, consts.PostStatusPublished},
		&repository.PostPatch{Status: &failed, PublishError: &msg})
	if err != nil {
		log.ErrorContext(ctx, "更新帖子状态失败", "post_id", post.ID, "err", err)
		return UnExpectedError
	}
	if !changed {
		return nil
	}

	// 执行方明确宣告失败，血缘直接置终态，不再退避重试
	if entry != nil {
		if _, err := s.queueRepo.RecordFailure(ctx, entry.ID, msg, nil, true); err != nil {
			log.ErrorContext(ctx, "记录发布失败失败", "post_id", post.ID, "err", err)
		}
	}
	log.WarnContext(ctx, "帖子发布失败", "post_id", post.ID, "platform", post.Platform.Name, "reason", msg)
	s.notifier.Notify(ctx, &Notification{
		Type:    consts.NotifyError,
		Message: fmt.Sprintf("帖子发布到 %s 失败：%s", post.Platform.DisplayName, msg),
		PostID:  post.ID,
	})
	return nil
}

// attempt 执行一次投递。传输成功直接发布并完结血缘；
// 失败按指数退避排下一次重试，尝试耗尽时血缘与帖子一起置终态。
func (s *PublisherServiceImpl) attempt(ctx context.Context, post *model.Post, sinkURL string, entry *model.PublishQueue) error {
	payload := &DispatchPayload{
		PostID:        post.ID,
		Platform:      post.Platform.Name,
		Title:         post.Brief.Title,
		Content:       post.EffectiveContent(),
		DispatchToken: entry.DispatchToken,
		Attempt:       entry.Attempts + 1,
	}
	if post.Brief.LinkURL != nil {
		payload.LinkURL = *post.Brief.LinkURL
	}
	if post.Brief.MediaObject != nil {
		payload.MediaURL = minio.GetPublicURL(*post.Brief.MediaObject)
	}

	err := s.deliverer.Deliver(ctx, sinkURL, payload)
	if err == nil {
		now := time.Now()
		published := consts.PostStatusPublished
		if _, perr := s.postRepo.UpdatePostIfStatus(ctx, post.ID,
			[]string{consts.PostStatusApproved},
			&repository.PostPatch{Status: &published, PublishedAt: &now, ClearPublishError: true}); perr != nil {
			log.ErrorContext(ctx, "更新帖子状态失败", "post_id", post.ID, "err", perr)
			return UnExpectedError
		}
		if _, qerr := s.queueRepo.MarkCompleted(ctx, post.ID); qerr != nil {
			log.ErrorContext(ctx, "完成发布队列记录失败", "post_id", post.ID, "err", qerr)
		}
		log.InfoContext(ctx, "投递成功，帖子已发布", "post_id", post.ID, "platform", post.Platform.Name, "attempt", entry.Attempts+1)
		s.notifier.Notify(ctx, &Notification{
			Type:    consts.NotifySuccess,
			Message: fmt.Sprintf("帖子已发布到 %s", post.Platform.DisplayName),
			PostID:  post.ID,
		})
		return nil
	}
	log.WarnContext(ctx, "投递失败", "post_id", post.ID, "attempt", entry.Attempts+1, "err", err)

	terminal := entry.Attempts+1 >= entry.MaxAttempts
	var nextRetryAt *time.Time
	if !terminal {
		backoff := time.Duration(s.cfg.RetryBackoff) * time.Second << entry.Attempts
		next := time.Now().Add(backoff)
		nextRetryAt = &next
	}
	if _, ferr := s.queueRepo.RecordFailure(ctx, entry.ID, err.Error(), nextRetryAt, terminal); ferr != nil {
		log.ErrorContext(ctx, "记录投递失败失败", "post_id", post.ID, "err", ferr)
		return UnExpectedError
	}

	if terminal {
		failed := consts.PostStatusFailed
		errMsg := err.Error()
		if _, perr := s.postRepo.UpdatePostIfStatus(ctx, post.ID,
			[]string{consts.PostStatusApproved},
			&repository.PostPatch{Status: &failed, PublishError: &errMsg}); perr != nil {
			log.ErrorContext(ctx, "更新帖子状态失败", "post_id", post.ID, "err", perr)
		}
		log.ErrorContext(ctx, "投递尝试耗尽，帖子置为失败", "post_id", post.ID, "attempts", entry.Attempts+1)
		s.notifier.Notify(ctx, &Notification{
			Type:    consts.NotifyError,
			Message: fmt.Sprintf("帖子投递到 %s 连续失败，已停止重试", post.Platform.DisplayName),
			PostID:  post.ID,
		})
	}
	return ErrDeliveryFailed
}

// resolveSink 平台自带投递地址优先，否则回落到全局配置
func (s *PublisherServiceImpl) resolveSink(ctx context.Context, platform *model.Platform) (string, error) {
	if platform.WebhookURL != nil && *platform.WebhookURL != "" {
		return *platform.WebhookURL, nil
	}
	sinkURL, err := s.settingSvc.GetValue(ctx, consts.SettingSinkWebhookURL)
	if err != nil {
		return "", err
	}
	if sinkURL == "" {
		return "", ErrSinkNotConfigured
	}
	return sinkURL, nil
}

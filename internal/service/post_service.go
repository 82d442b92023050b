package service

import (
	"Postflow/internal/model"
	"Postflow/internal/pkg/consts"
	"Postflow/internal/pkg/llm"
	"Postflow/internal/repository"
	"context"
	log "log/slog"
	"time"
)

type PostService interface {
	GetPost(ctx context.Context, id uint64) (*model.Post, error)
	ListByBrief(ctx context.Context, briefID uint64, status string) ([]*model.Post, error)
	UpdateContent(ctx context.Context, id uint64, content string) (*model.Post, error)
	Approve(ctx context.Context, id uint64) (*model.Post, error)
	ApproveAll(ctx context.Context, briefID uint64) (int, error)
	Correct(ctx context.Context, id uint64, correctionPrompt string) (*model.Post, error)
	Regenerate(ctx context.Context, id uint64) (*model.Post, error)
	Versions(ctx context.Context, id uint64) ([]*model.PostVersion, error)
	Schedule(ctx context.Context, id uint64, at time.Time) (*model.Post, error)
}

type PostServiceImpl struct {
	postRepo    repository.PostRepo
	versionRepo repository.PostVersionRepo
	generator   llm.Generator
	settingSvc  SettingService
}

func NewPostService(
	postRepo repository.PostRepo,
	versionRepo repository.PostVersionRepo,
	generator llm.Generator,
	settingSvc SettingService,
) PostService {
	return &PostServiceImpl{
		postRepo:    postRepo,
		versionRepo: versionRepo,
		generator:   generator,
		settingSvc:  settingSvc,
	}
}

func (s *PostServiceImpl) GetPost(ctx context.Context, id uint64) (*model.Post, error) {
	post, err := s.postRepo.GetPost(ctx, id)
	if err != nil {
		log.ErrorContext(ctx, "查询帖子失败", "post_id", id, "err", err)
		return nil, UnExpectedError
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *PostServiceImpl) ListByBrief(ctx context.Context, briefID uint64, status string) ([]*model.Post, error) {
	var posts []*model.Post
	var err error
	if status != "" {
		posts, err = s.postRepo.ListByBriefAndStatus(ctx, briefID, status)
	} else {
		posts, err = s.postRepo.ListByBrief(ctx, briefID)
	}
	if err != nil {
		log.ErrorContext(ctx, "查询帖子列表失败", "brief_id", briefID, "err", err)
		return nil, UnExpectedError
	}
	return posts, nil
}

// UpdateContent 人工覆盖稿。原始生成稿保留在 content 字段不动，
// 下游一律走 EffectiveContent。
func (s *PostServiceImpl) UpdateContent(ctx context.Context, id uint64, content string) (*model.Post, error) {
	if content == "" {
		return nil, ErrParamInvalid
	}
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Status != consts.PostStatusDraft && post.Status != consts.PostStatusApproved {
		return nil, ErrPostStateConflict
	}

	changed, err := s.postRepo.UpdatePostIfStatus(ctx, id,
		[]string{consts.PostStatusDraft, consts.PostStatusApproved},
		&repository.PostPatch{EditedContent: &content, IncrEditCount: true})
	if err != nil {
		log.ErrorContext(ctx, "更新帖子内容失败", "post_id", id, "err", err)
		return nil, UnExpectedError
	}
	if !changed {
		return nil, ErrPostStateConflict
	}
	return s.GetPost(ctx, id)
}

// Approve 批准/撤销批准开关：draft 置为 approved，approved 退回 draft。
// published 与 failed 为终点，不参与开关。
func (s *PostServiceImpl) Approve(ctx context.Context, id uint64) (*model.Post, error) {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}

	var changed bool
	switch post.Status {
	case consts.PostStatusDraft:
		now := time.Now()
		approved := consts.PostStatusApproved
		changed, err = s.postRepo.UpdatePostIfStatus(ctx, id,
			[]string{consts.PostStatusDraft},
			&repository.PostPatch{Status: &approved, ApprovedAt: &now})
	case consts.PostStatusApproved:
		draft := consts.PostStatusDraft
		changed, err = s.postRepo.UpdatePostIfStatus(ctx, id,
			[]string{consts.PostStatusApproved},
			&repository.PostPatch{Status: &draft, ClearApprovedAt: true})
	default:
		return nil, ErrPostStateConflict
	}
	if err != nil {
		log.ErrorContext(ctx, "切换帖子批准状态失败", "post_id", id, "err", err)
		return nil, UnExpectedError
	}
	if !changed {
		// 条件更新未命中说明状态已被并发改走
		return nil, ErrPostStateConflict
	}
	return s.GetPost(ctx, id)
}

// ApproveAll 批量批准素材下所有草稿帖，返回实际批准数量
func (s *PostServiceImpl) ApproveAll(ctx context.Context, briefID uint64) (int, error) {
	posts, err := s.postRepo.ListByBriefAndStatus(ctx, briefID, consts.PostStatusDraft)
	if err != nil {
		log.ErrorContext(ctx, "查询帖子列表失败", "brief_id", briefID, "err", err)
		return 0, UnExpectedError
	}

	now := time.Now()
	approved := consts.PostStatusApproved
	count := 0
	for _, post := range posts {
		changed, err := s.postRepo.UpdatePostIfStatus(ctx, post.ID,
			[]string{consts.PostStatusDraft},
			&repository.PostPatch{Status: &approved, ApprovedAt: &now})
		if err != nil {
			log.ErrorContext(ctx, "批准帖子失败", "post_id", post.ID, "err", err)
			return count, UnExpectedError
		}
		if changed {
			count++
		}
	}
	log.InfoContext(ctx, "批量批准完成", "brief_id", briefID, "approved", count)
	return count, nil
}

// Correct 按修改意见重写帖子。当前生效稿先快照入版本历史，
// 重写后帖子退回 draft，人工覆盖稿随之作废。
func (s *PostServiceImpl) Correct(ctx context.Context, id uint64, correctionPrompt string) (*model.Post, error) {
	if correctionPrompt == "" {
		return nil, ErrParamInvalid
	}
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Status != consts.PostStatusDraft && post.Status != consts.PostStatusApproved {
		return nil, ErrPostStateConflict
	}

	content, err := s.generator.Generate(ctx, &llm.Request{
		SourceText:       post.EffectiveContent(),
		PlatformTemplate: correctionTemplate(correctionPrompt),
	})
	if err != nil {
		log.ErrorContext(ctx, "帖子修正失败", "post_id", id, "err", err)
		return nil, ErrGenerationFailed
	}

	maxVersion, err := s.versionRepo.MaxVersion(ctx, id)
	if err != nil {
		log.ErrorContext(ctx, "查询帖子版本失败", "post_id", id, "err", err)
		return nil, UnExpectedError
	}
	if err := s.versionRepo.CreateVersion(ctx, &model.PostVersion{
		PostID:           id,
		Version:          maxVersion + 1,
		Content:          post.EffectiveContent(),
		CorrectionPrompt: &correctionPrompt,
	}); err != nil {
		log.ErrorContext(ctx, "保存帖子版本失败", "post_id", id, "err", err)
		return nil, UnExpectedError
	}

	draft := consts.PostStatusDraft
	changed, err := s.postRepo.UpdatePostIfStatus(ctx, id,
		[]string{consts.PostStatusDraft, consts.PostStatusApproved},
		&repository.PostPatch{
			Content:            &content,
			ClearEditedContent: true,
			Status:             &draft,
			ClearApprovedAt:    true,
		})
	if err != nil {
		log.ErrorContext(ctx, "更新帖子失败", "post_id", id, "err", err)
		return nil, UnExpectedError
	}
	if !changed {
		return nil, ErrPostStateConflict
	}
	log.InfoContext(ctx, "帖子已修正", "post_id", id, "version", maxVersion+1)
	return s.GetPost(ctx, id)
}

// Regenerate 推倒重来：从素材与平台模板完整重生，版本历史与人工覆盖稿一并清空
func (s *PostServiceImpl) Regenerate(ctx context.Context, id uint64) (*model.Post, error) {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Status != consts.PostStatusDraft && post.Status != consts.PostStatusApproved {
		return nil, ErrPostStateConflict
	}

	masterPrompt, err := s.settingSvc.GetValue(ctx, consts.SettingMasterPrompt)
	if err != nil {
		return nil, err
	}
	imageURI, err := briefImageURI(ctx, &post.Brief)
	if err != nil {
		log.ErrorContext(ctx, "内联素材图片失败", "post_id", id, "err", err)
		return nil, UnExpectedError
	}

	start := time.Now()
	content, err := s.generator.Generate(ctx, &llm.Request{
		SourceText:       buildSourceText(ctx, &post.Brief),
		PlatformTemplate: post.Platform.PromptTemplate,
		MasterPrompt:     masterPrompt,
		ImageDataURI:     imageURI,
	})
	if err != nil {
		log.ErrorContext(ctx, "帖子重新生成失败", "post_id", id, "err", err)
		return nil, ErrGenerationFailed
	}
	elapsed := time.Since(start).Milliseconds()

	if err := s.versionRepo.DeleteByPost(ctx, id); err != nil {
		log.ErrorContext(ctx, "清空帖子版本失败", "post_id", id, "err", err)
		return nil, UnExpectedError
	}

	draft := consts.PostStatusDraft
	changed, err := s.postRepo.UpdatePostIfStatus(ctx, id,
		[]string{consts.PostStatusDraft, consts.PostStatusApproved},
		&repository.PostPatch{
			Content:            &content,
			ClearEditedContent: true,
			Status:             &draft,
			ClearApprovedAt:    true,
			GenerationTimeMs:   &elapsed,
		})
	if err != nil {
		log.ErrorContext(ctx, "更新帖子失败", "post_id", id, "err", err)
		return nil, UnExpectedError
	}
	if !changed {
		return nil, ErrPostStateConflict
	}
	log.InfoContext(ctx, "帖子已重新生成", "post_id", id)
	return s.GetPost(ctx, id)
}

func (s *PostServiceImpl) Versions(ctx context.Context, id uint64) ([]*model.PostVersion, error) {
	if _, err := s.GetPost(ctx, id); err != nil {
		return nil, err
	}
	versions, err := s.versionRepo.ListByPost(ctx, id)
	if err != nil {
		log.ErrorContext(ctx, "查询帖子版本失败", "post_id", id, "err", err)
		return nil, UnExpectedError
	}
	return versions, nil
}

// Schedule 设定期望的发布时间，仅作记录，投递仍由人工触发
func (s *PostServiceImpl) Schedule(ctx context.Context, id uint64, at time.Time) (*model.Post, error) {
	if at.IsZero() || at.Before(time.Now()) {
		return nil, ErrParamInvalid
	}
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Status == consts.PostStatusPublished {
		return nil, ErrPostStateConflict
	}

	if _, err := s.postRepo.UpdatePost(ctx, id, &repository.PostPatch{ScheduledAt: &at}); err != nil {
		log.ErrorContext(ctx, "更新帖子排期失败", "post_id", id, "err", err)
		return nil, UnExpectedError
	}
	return s.GetPost(ctx, id)
}

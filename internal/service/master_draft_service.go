package service

import (
	"Postflow/internal/model"
	"Postflow/internal/pkg/consts"
	"Postflow/internal/pkg/llm"
	"Postflow/internal/repository"
	"context"
	log "log/slog"
)

type MasterDraftService interface {
	Generate(ctx context.Context, briefID uint64) (*model.MasterDraft, error)
	Correct(ctx context.Context, draftID uint64, correctionPrompt string) (*model.MasterDraft, error)
	Approve(ctx context.Context, draftID uint64) (*model.MasterDraft, error)
	ListVersions(ctx context.Context, briefID uint64) ([]*model.MasterDraft, error)
	Latest(ctx context.Context, briefID uint64) (*model.MasterDraft, error)
}

type MasterDraftServiceImpl struct {
	briefRepo  repository.BriefRepo
	draftRepo  repository.MasterDraftRepo
	generator  llm.Generator
	settingSvc SettingService
}

func NewMasterDraftService(
	briefRepo repository.BriefRepo,
	draftRepo repository.MasterDraftRepo,
	generator llm.Generator,
	settingSvc SettingService,
) MasterDraftService {
	return &MasterDraftServiceImpl{
		briefRepo:  briefRepo,
		draftRepo:  draftRepo,
		generator:  generator,
		settingSvc: settingSvc,
	}
}

// Generate 从素材生成下一个版本的主草稿。
// 主草稿链只追加：每次生成都是 MAX(version)+1，旧版本永不改写。
func (s *MasterDraftServiceImpl) Generate(ctx context.Context, briefID uint64) (*model.MasterDraft, error) {
	brief, err := s.briefRepo.GetBrief(ctx, briefID)
	if err != nil {
		log.ErrorContext(ctx, "查询素材失败", "brief_id", briefID, "err", err)
		return nil, UnExpectedError
	}
	if brief == nil {
		return nil, ErrBriefNotFound
	}

	masterPrompt, err := s.settingSvc.GetValue(ctx, consts.SettingMasterPrompt)
	if err != nil {
		return nil, err
	}
	if masterPrompt == "" {
		return nil, ErrMasterPromptMissing
	}

	imageURI, err := briefImageURI(ctx, brief)
	if err != nil {
		log.ErrorContext(ctx, "内联素材图片失败", "brief_id", briefID, "err", err)
		return nil, UnExpectedError
	}

	content, err := s.generator.Generate(ctx, &llm.Request{
		SourceText:       buildSourceText(ctx, brief),
		PlatformTemplate: masterPrompt,
		ImageDataURI:     imageURI,
	})
	if err != nil {
		log.ErrorContext(ctx, "主草稿生成失败", "brief_id", briefID, "err", err)
		return nil, ErrGenerationFailed
	}

	return s.appendVersion(ctx, briefID, content, nil)
}

// Correct 对指定版本提出修改意见，产出新版本。已批准的版本是链的终点，不可再修正。
func (s *MasterDraftServiceImpl) Correct(ctx context.Context, draftID uint64, correctionPrompt string) (*model.MasterDraft, error) {
	if correctionPrompt == "" {
		return nil, ErrParamInvalid
	}

	draft, err := s.draftRepo.GetDraft(ctx, draftID)
	if err != nil {
		log.ErrorContext(ctx, "查询主草稿失败", "draft_id", draftID, "err", err)
		return nil, UnExpectedError
	}
	if draft == nil {
		return nil, ErrDraftNotFound
	}
	if draft.Status == consts.DraftStatusApproved {
		return nil, ErrDraftApproved
	}

	content, err := s.generator.Generate(ctx, &llm.Request{
		SourceText:       draft.Content,
		PlatformTemplate: correctionTemplate(correctionPrompt),
	})
	if err != nil {
		log.ErrorContext(ctx, "主草稿修正失败", "draft_id", draftID, "err", err)
		return nil, ErrGenerationFailed
	}

	return s.appendVersion(ctx, draft.BriefID, content, &correctionPrompt)
}

// Approve 批准主草稿。重复批准视为幂等成功。
func (s *MasterDraftServiceImpl) Approve(ctx context.Context, draftID uint64) (*model.MasterDraft, error) {
	draft, err := s.draftRepo.GetDraft(ctx, draftID)
	if err != nil {
		log.ErrorContext(ctx, "查询主草稿失败", "draft_id", draftID, "err", err)
		return nil, UnExpectedError
	}
	if draft == nil {
		return nil, ErrDraftNotFound
	}
	if draft.Status == consts.DraftStatusApproved {
		return draft, nil
	}

	changed, err := s.draftRepo.ApproveDraft(ctx, draftID)
	if err != nil {
		log.ErrorContext(ctx, "批准主草稿失败", "draft_id", draftID, "err", err)
		return nil, UnExpectedError
	}
	if changed {
		log.InfoContext(ctx, "主草稿已批准", "draft_id", draftID, "brief_id", draft.BriefID, "version", draft.Version)
	}
	draft.Status = consts.DraftStatusApproved
	return draft, nil
}

func (s *MasterDraftServiceImpl) ListVersions(ctx context.Context, briefID uint64) ([]*model.MasterDraft, error) {
	drafts, err := s.draftRepo.ListByBrief(ctx, briefID)
	if err != nil {
		log.ErrorContext(ctx, "查询主草稿列表失败", "brief_id", briefID, "err", err)
		return nil, UnExpectedError
	}
	return drafts, nil
}

func (s *MasterDraftServiceImpl) Latest(ctx context.Context, briefID uint64) (*model.MasterDraft, error) {
	draft, err := s.draftRepo.LatestByBrief(ctx, briefID)
	if err != nil {
		log.ErrorContext(ctx, "查询主草稿失败", "brief_id", briefID, "err", err)
		return nil, UnExpectedError
	}
	if draft == nil {
		return nil, ErrDraftNotFound
	}
	return draft, nil
}

func (s *MasterDraftServiceImpl) appendVersion(ctx context.Context, briefID uint64, content string, correctionPrompt *string) (*model.MasterDraft, error) {
	maxVersion, err := s.draftRepo.MaxVersion(ctx, briefID)
	if err != nil {
		log.ErrorContext(ctx, "查询主草稿版本失败", "brief_id", briefID, "err", err)
		return nil, UnExpectedError
	}

	draft := &model.MasterDraft{
		BriefID:          briefID,
		Version:          maxVersion + 1,
		Content:          content,
		CorrectionPrompt: correctionPrompt,
		Status:           consts.DraftStatusDraft,
	}
	if err := s.draftRepo.CreateDraft(ctx, draft); err != nil {
		log.ErrorContext(ctx, "保存主草稿失败", "brief_id", briefID, "err", err)
		return nil, UnExpectedError
	}
	log.InfoContext(ctx, "主草稿新版本已生成", "brief_id", briefID, "version", draft.Version)
	return draft, nil
}

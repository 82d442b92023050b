package service

import (
	"Postflow/internal/model"
	"Postflow/internal/pkg/consts"
	"Postflow/internal/pkg/llm"
	"Postflow/internal/pkg/minio"
	"Postflow/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// GenerationResult 扇出中单个平台的生成结果，失败平台不影响其余平台
type GenerationResult struct {
	PlatformID   uint64 `json:"platform_id"`
	PlatformName string `json:"platform_name"`
	PostID       uint64 `json:"post_id,omitempty"`
	Error        string `json:"error,omitempty"`
}

type ContentService interface {
	GeneratePosts(ctx context.Context, briefID uint64, masterDraftID *uint64) ([]*GenerationResult, error)
}

type ContentServiceImpl struct {
	briefRepo    repository.BriefRepo
	draftRepo    repository.MasterDraftRepo
	platformRepo repository.PlatformRepo
	postRepo     repository.PostRepo
	generator    llm.Generator
	settingSvc   SettingService
	notifier     Notifier
}

func NewContentService(
	briefRepo repository.BriefRepo,
	draftRepo repository.MasterDraftRepo,
	platformRepo repository.PlatformRepo,
	postRepo repository.PostRepo,
	generator llm.Generator,
	settingSvc SettingService,
	notifier Notifier,
) ContentService {
	return &ContentServiceImpl{
		briefRepo:    briefRepo,
		draftRepo:    draftRepo,
		platformRepo: platformRepo,
		postRepo:     postRepo,
		generator:    generator,
		settingSvc:   settingSvc,
		notifier:     notifier,
	}
}

// GeneratePosts 按固定顺序逐平台生成草稿帖。
// 指定 masterDraftID 时以已批准的主草稿为底稿，否则直接使用素材原文；
// 单个平台失败记录在结果中并继续，不中断整体扇出。
func (s *ContentServiceImpl) GeneratePosts(ctx context.Context, briefID uint64, masterDraftID *uint64) ([]*GenerationResult, error) {
	brief, err := s.briefRepo.GetBrief(ctx, briefID)
	if err != nil {
		log.ErrorContext(ctx, "查询素材失败", "brief_id", briefID, "err", err)
		return nil, UnExpectedError
	}
	if brief == nil {
		return nil, ErrBriefNotFound
	}

	sourceText, imageURI, err := s.resolveSource(ctx, brief, masterDraftID)
	if err != nil {
		return nil, err
	}

	platforms, err := s.resolvePlatforms(ctx, brief)
	if err != nil {
		return nil, err
	}
	CanonicalOrder(platforms)

	// 底稿来自已批准主草稿时不再套主提示词模板，底稿即定稿语气
	var masterPrompt string
	if masterDraftID == nil {
		masterPrompt, err = s.settingSvc.GetValue(ctx, consts.SettingMasterPrompt)
		if err != nil {
			return nil, err
		}
	}

	results := make([]*GenerationResult, 0, len(platforms))
	succeeded := 0
	for _, platform := range platforms {
		result := &GenerationResult{PlatformID: platform.ID, PlatformName: platform.Name}
		results = append(results, result)

		start := time.Now()
		content, err := s.generator.Generate(ctx, &llm.Request{
			SourceText:       sourceText,
			PlatformTemplate: platform.PromptTemplate,
			MasterPrompt:     masterPrompt,
			ImageDataURI:     imageURI,
		})
		if err != nil {
			log.WarnContext(ctx, "平台内容生成失败", "brief_id", briefID, "platform", platform.Name, "err", err)
			result.Error = ErrGenerationFailed.Error()
			continue
		}

		post := &model.Post{
			BriefID:          briefID,
			PlatformID:       platform.ID,
			MasterDraftID:    masterDraftID,
			Content:          content,
			Status:           consts.PostStatusDraft,
			GenerationTimeMs: time.Since(start).Milliseconds(),
		}
		if err := s.postRepo.CreatePost(ctx, post); err != nil {
			log.ErrorContext(ctx, "保存生成帖子失败", "brief_id", briefID, "platform", platform.Name, "err", err)
			result.Error = UnExpectedError.Error()
			continue
		}
		result.PostID = post.ID
		succeeded++
	}

	log.InfoContext(ctx, "内容扇出完成", "brief_id", briefID, "total", len(platforms), "succeeded", succeeded)
	notifyType := consts.NotifySuccess
	if succeeded < len(platforms) {
		notifyType = consts.NotifyInfo
	}
	s.notifier.Notify(ctx, &Notification{
		Type:    notifyType,
		Message: fmt.Sprintf("素材「%s」生成完成：%d/%d 个平台成功", brief.Title, succeeded, len(platforms)),
	})
	return results, nil
}

// resolveSource 确定底稿文本与内联图片
func (s *ContentServiceImpl) resolveSource(ctx context.Context, brief *model.Brief, masterDraftID *uint64) (string, string, error) {
	var sourceText string
	if masterDraftID != nil {
		draft, err := s.draftRepo.GetDraft(ctx, *masterDraftID)
		if err != nil {
			log.ErrorContext(ctx, "查询主草稿失败", "draft_id", *masterDraftID, "err", err)
			return "", "", UnExpectedError
		}
		if draft == nil || draft.BriefID != brief.ID {
			return "", "", ErrDraftNotFound
		}
		if draft.Status != consts.DraftStatusApproved {
			return "", "", ErrDraftNotApproved
		}
		// 主草稿生成时已并入文档上下文，这里只追加链接，不再重复拼接
		sourceText = appendLink(draft.Content, brief.LinkURL)
	} else {
		sourceText = buildSourceText(ctx, brief)
	}

	imageURI, err := briefImageURI(ctx, brief)
	if err != nil {
		log.ErrorContext(ctx, "内联素材图片失败", "brief_id", brief.ID, "err", err)
		return "", "", UnExpectedError
	}
	return sourceText, imageURI, nil
}

// resolvePlatforms 素材指定了平台集合时取其中仍启用的，否则取全部启用平台
func (s *ContentServiceImpl) resolvePlatforms(ctx context.Context, brief *model.Brief) ([]*model.Platform, error) {
	var platforms []*model.Platform
	var err error
	if brief.SelectedPlatforms != nil && *brief.SelectedPlatforms != "" {
		var ids []uint64
		if jsonErr := json.Unmarshal([]byte(*brief.SelectedPlatforms), &ids); jsonErr != nil {
			log.WarnContext(ctx, "素材平台选择解析失败", "brief_id", brief.ID, "err", jsonErr)
			return nil, ErrParamInvalid
		}
		platforms, err = s.platformRepo.ListActiveByIds(ctx, ids)
	} else {
		platforms, err = s.platformRepo.ListActive(ctx)
	}
	if err != nil {
		log.ErrorContext(ctx, "查询平台失败", "brief_id", brief.ID, "err", err)
		return nil, UnExpectedError
	}
	if len(platforms) == 0 {
		return nil, ErrPlatformNotFound
	}
	return platforms, nil
}

// CanonicalOrder 按固定平台次序稳定排序，未列入次序表的平台排在末尾
func CanonicalOrder(platforms []*model.Platform) {
	rank := make(map[string]int, len(consts.PlatformSequence))
	for i, name := range consts.PlatformSequence {
		rank[name] = i
	}
	position := func(name string) int {
		if r, ok := rank[name]; ok {
			return r
		}
		return 999
	}
	sort.SliceStable(platforms, func(i, j int) bool {
		return position(platforms[i].Name) < position(platforms[j].Name)
	})
}

// appendLink 素材带链接时追加到正文尾部
func appendLink(text string, linkURL *string) string {
	if linkURL == nil || *linkURL == "" {
		return text
	}
	return text + "\n\nLink: " + *linkURL
}

// buildSourceText 素材正文加链接与可读文档上下文。
// 只有文本类文档可并入提示词，其余格式跳过。
func buildSourceText(ctx context.Context, brief *model.Brief) string {
	var b strings.Builder
	b.WriteString(appendLink(brief.Content, brief.LinkURL))
	for _, doc := range brief.Documents {
		if !readableMime(doc.MimeType) {
			continue
		}
		data, err := minio.FetchObject(ctx, doc.ObjectKey)
		if err != nil {
			log.WarnContext(ctx, "读取素材文档失败", "object", doc.ObjectKey, "err", err)
			continue
		}
		b.WriteString(fmt.Sprintf("\n\n--- 文档：%s ---\n", doc.FileName))
		b.Write(data)
	}
	return b.String()
}

func readableMime(mimeType string) bool {
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	mimeType = strings.TrimSpace(mimeType)
	return strings.HasPrefix(mimeType, "text/") || mimeType == "application/json"
}

// briefImageURI 素材媒体为图片时内联为 data URI，供视觉模型使用
func briefImageURI(ctx context.Context, brief *model.Brief) (string, error) {
	if brief.MediaObject == nil || brief.MediaType == nil {
		return "", nil
	}
	if !strings.HasPrefix(*brief.MediaType, consts.MimePrefixImage) {
		return "", nil
	}
	return minio.InlineDataURI(ctx, *brief.MediaObject, *brief.MediaType)
}

// correctionScaffold 修正场景的包装模板，原文经占位符注入
const correctionScaffold = "请根据以下修改意见重写原文。保持原文的语言、立场与事实不变，只输出重写后的正文。\n\n修改意见：\n%s\n\n原文：\n" + consts.BriefPlaceholder

func correctionTemplate(prompt string) string {
	return fmt.Sprintf(correctionScaffold, prompt)
}

package service

import (
	"Postflow/internal/model"
	"Postflow/internal/pkg/minio"
	"Postflow/internal/repository"
	"bytes"
	"context"
	"fmt"
	log "log/slog"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
)

// BriefUpload 随素材一并提交的文件
type BriefUpload struct {
	FileName string
	Data     []byte
}

type BriefService interface {
	CreateBrief(ctx context.Context, brief *model.Brief, media *BriefUpload, docs []*BriefUpload) (*model.Brief, error)
	GetBrief(ctx context.Context, id uint64) (*model.Brief, error)
	GetBriefBySlug(ctx context.Context, slug string) (*model.Brief, error)
	ListBriefs(ctx context.Context, limit, offset int) ([]*model.Brief, error)
	DeleteBrief(ctx context.Context, id uint64) error
}

type BriefServiceImpl struct {
	briefRepo repository.BriefRepo
}

func NewBriefService(briefRepo repository.BriefRepo) BriefService {
	return &BriefServiceImpl{
		briefRepo: briefRepo,
	}
}

func (s *BriefServiceImpl) CreateBrief(ctx context.Context, brief *model.Brief, media *BriefUpload, docs []*BriefUpload) (*model.Brief, error) {
	if brief.Title == "" || brief.Content == "" {
		return nil, ErrParamInvalid
	}

	slug, err := s.uniqueSlug(ctx, brief.Title)
	if err != nil {
		return nil, err
	}
	brief.Slug = slug

	if media != nil {
		objectKey, mimeType, err := uploadToBucket(ctx, "briefs", media)
		if err != nil {
			log.ErrorContext(ctx, "上传素材媒体失败", "file", media.FileName, "err", err)
			return nil, UnExpectedError
		}
		brief.MediaObject = &objectKey
		brief.MediaType = &mimeType
	}

	var documents []*model.BriefDocument
	for _, doc := range docs {
		objectKey, mimeType, err := uploadToBucket(ctx, "docs", doc)
		if err != nil {
			log.ErrorContext(ctx, "上传素材文档失败", "file", doc.FileName, "err", err)
			return nil, UnExpectedError
		}
		documents = append(documents, &model.BriefDocument{
			ObjectKey: objectKey,
			MimeType:  mimeType,
			FileName:  doc.FileName,
		})
	}

	if err := s.briefRepo.CreateBrief(ctx, brief, documents); err != nil {
		log.ErrorContext(ctx, "创建素材失败", "title", brief.Title, "err", err)
		return nil, UnExpectedError
	}
	brief.Documents = make([]model.BriefDocument, 0, len(documents))
	for _, doc := range documents {
		brief.Documents = append(brief.Documents, *doc)
	}
	log.InfoContext(ctx, "素材已创建", "brief_id", brief.ID, "slug", brief.Slug, "docs", len(documents))
	return brief, nil
}

func (s *BriefServiceImpl) GetBrief(ctx context.Context, id uint64) (*model.Brief, error) {
	brief, err := s.briefRepo.GetBrief(ctx, id)
	if err != nil {
		log.ErrorContext(ctx, "查询素材失败", "brief_id", id, "err", err)
		return nil, UnExpectedError
	}
	if brief == nil {
		return nil, ErrBriefNotFound
	}
	return brief, nil
}

func (s *BriefServiceImpl) GetBriefBySlug(ctx context.Context, slug string) (*model.Brief, error) {
	brief, err := s.briefRepo.GetBriefBySlug(ctx, slug)
	if err != nil {
		log.ErrorContext(ctx, "查询素材失败", "slug", slug, "err", err)
		return nil, UnExpectedError
	}
	if brief == nil {
		return nil, ErrBriefNotFound
	}
	return brief, nil
}

func (s *BriefServiceImpl) ListBriefs(ctx context.Context, limit, offset int) ([]*model.Brief, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	briefs, err := s.briefRepo.ListBriefs(ctx, limit, offset)
	if err != nil {
		log.ErrorContext(ctx, "查询素材列表失败", "err", err)
		return nil, UnExpectedError
	}
	return briefs, nil
}

func (s *BriefServiceImpl) DeleteBrief(ctx context.Context, id uint64) error {
	brief, err := s.briefRepo.GetBrief(ctx, id)
	if err != nil {
		log.ErrorContext(ctx, "查询素材失败", "brief_id", id, "err", err)
		return UnExpectedError
	}
	if brief == nil {
		return ErrBriefNotFound
	}

	// 先清对象再清行，对象删除失败只告警不阻断
	if brief.MediaObject != nil {
		if err := minio.DeleteFile(ctx, *brief.MediaObject); err != nil {
			log.WarnContext(ctx, "删除素材媒体失败", "object", *brief.MediaObject, "err", err)
		}
	}
	for _, doc := range brief.Documents {
		if err := minio.DeleteFile(ctx, doc.ObjectKey); err != nil {
			log.WarnContext(ctx, "删除素材文档失败", "object", doc.ObjectKey, "err", err)
		}
	}

	if err := s.briefRepo.DeleteBrief(ctx, id); err != nil {
		log.ErrorContext(ctx, "删除素材失败", "brief_id", id, "err", err)
		return UnExpectedError
	}
	return nil
}

// uniqueSlug 由标题派生 slug，撞库时追加短随机后缀
func (s *BriefServiceImpl) uniqueSlug(ctx context.Context, title string) (string, error) {
	slug := Slugify(title)
	existing, err := s.briefRepo.GetBriefBySlug(ctx, slug)
	if err != nil {
		log.ErrorContext(ctx, "查询 slug 失败", "slug", slug, "err", err)
		return "", UnExpectedError
	}
	if existing == nil {
		return slug, nil
	}
	return fmt.Sprintf("%s-%s", slug, uuid.NewString()[:8]), nil
}

// Slugify 标题转 slug：小写、非字母数字折叠为连字符
func Slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = uuid.NewString()[:8]
	}
	return slug
}

// uploadToBucket 嗅探类型后以随机对象键入桶，返回对象键与 MIME 类型。
// 魔数识别不了的按扩展名兜底，文本类文档正属于这种情况。
func uploadToBucket(ctx context.Context, prefix string, upload *BriefUpload) (string, string, error) {
	mimeType := "application/octet-stream"
	ext := strings.ToLower(filepath.Ext(upload.FileName))

	if kind, err := filetype.Match(upload.Data); err == nil && kind != filetype.Unknown {
		mimeType = kind.MIME.Value
		ext = "." + kind.Extension
	} else if byExt := mime.TypeByExtension(ext); byExt != "" {
		mimeType = byExt
	}

	objectKey := fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), ext)
	if _, err := minio.UploadFile(ctx, objectKey, bytes.NewReader(upload.Data), int64(len(upload.Data)), mimeType); err != nil {
		return "", "", err
	}
	return objectKey, mimeType, nil
}

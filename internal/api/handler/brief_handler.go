package handler

import (
	"Postflow/internal/api/dto"
	"Postflow/internal/model"
	"Postflow/internal/pkg/response"
	"Postflow/internal/service"
	"errors"
	"io"
	log "log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type BriefHandler struct {
	briefService service.BriefService
}

func NewBriefHandler(briefService service.BriefService) *BriefHandler {
	return &BriefHandler{briefService: briefService}
}

// Create 创建素材，表单携带可选的媒体文件与上下文文档
func (s *BriefHandler) Create(c *gin.Context) {
	var req dto.CreateBriefReq
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}

	brief := &model.Brief{
		Title:   req.Title,
		Content: req.Content,
	}
	if req.LinkURL != "" {
		brief.LinkURL = &req.LinkURL
	}
	if req.SelectedPlatforms != "" {
		brief.SelectedPlatforms = &req.SelectedPlatforms
	}

	form, err := c.MultipartForm()
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	var media *service.BriefUpload
	var docs []*service.BriefUpload
	if form != nil {
		if files := form.File["media"]; len(files) > 0 {
			media, err = readUpload(files[0])
			if err != nil {
				response.Error(c, service.ErrParamInvalid)
				return
			}
		}
		for _, fh := range form.File["documents"] {
			doc, err := readUpload(fh)
			if err != nil {
				response.Error(c, service.ErrParamInvalid)
				return
			}
			docs = append(docs, doc)
		}
	}

	created, err := s.briefService.CreateBrief(c.Request.Context(), brief, media, docs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, created)
}

func (s *BriefHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("brief_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	brief, err := s.briefService.GetBrief(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, brief)
}

func (s *BriefHandler) GetBySlug(c *gin.Context) {
	brief, err := s.briefService.GetBriefBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, brief)
}

func (s *BriefHandler) List(c *gin.Context) {
	var req dto.ListBriefReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, err)
		return
	}
	briefs, err := s.briefService.ListBriefs(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, briefs)
}

func (s *BriefHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("brief_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	if err := s.briefService.DeleteBrief(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	log.InfoContext(c.Request.Context(), "素材已删除", "brief_id", id)
	response.Success(c, nil)
}

func readUpload(fh *multipart.FileHeader) (*service.BriefUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &service.BriefUpload{FileName: fh.Filename, Data: data}, nil
}

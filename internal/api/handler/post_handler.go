package handler

import (
	"Postflow/internal/api/dto"
	"Postflow/internal/pkg/response"
	"Postflow/internal/service"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postService    service.PostService
	contentService service.ContentService
}

func NewPostHandler(postService service.PostService, contentService service.ContentService) *PostHandler {
	return &PostHandler{
		postService:    postService,
		contentService: contentService,
	}
}

// Generate 对素材执行平台扇出，逐平台生成草稿帖
func (s *PostHandler) Generate(c *gin.Context) {
	briefID, err := strconv.ParseUint(c.Param("brief_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	var req dto.GeneratePostsReq
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.Error(c, err)
		return
	}

	results, err := s.contentService.GeneratePosts(c.Request.Context(), briefID, req.MasterDraftID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, results)
}

func (s *PostHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	post, err := s.postService.GetPost(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

func (s *PostHandler) ListByBrief(c *gin.Context) {
	briefID, err := strconv.ParseUint(c.Param("brief_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	posts, err := s.postService.ListByBrief(c.Request.Context(), briefID, c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, posts)
}

func (s *PostHandler) UpdateContent(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	var req dto.UpdatePostContentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	post, err := s.postService.UpdateContent(c.Request.Context(), id, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

// Approve 批准/撤销批准开关
func (s *PostHandler) Approve(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	post, err := s.postService.Approve(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

func (s *PostHandler) ApproveAll(c *gin.Context) {
	briefID, err := strconv.ParseUint(c.Param("brief_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	count, err := s.postService.ApproveAll(c.Request.Context(), briefID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"approved": count})
}

func (s *PostHandler) Correct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	var req dto.CorrectPostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	post, err := s.postService.Correct(c.Request.Context(), id, req.CorrectionPrompt)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

func (s *PostHandler) Regenerate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	post, err := s.postService.Regenerate(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

func (s *PostHandler) Versions(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	versions, err := s.postService.Versions(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, versions)
}

func (s *PostHandler) Schedule(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	var req dto.SchedulePostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	at, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	post, err := s.postService.Schedule(c.Request.Context(), id, at)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

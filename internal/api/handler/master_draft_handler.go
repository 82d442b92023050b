package handler

import (
	"Postflow/internal/api/dto"
	"Postflow/internal/pkg/response"
	"Postflow/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type MasterDraftHandler struct {
	draftService service.MasterDraftService
}

func NewMasterDraftHandler(draftService service.MasterDraftService) *MasterDraftHandler {
	return &MasterDraftHandler{draftService: draftService}
}

// Generate 从素材生成主草稿链的下一个版本
func (s *MasterDraftHandler) Generate(c *gin.Context) {
	briefID, err := strconv.ParseUint(c.Param("brief_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	draft, err := s.draftService.Generate(c.Request.Context(), briefID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, draft)
}

func (s *MasterDraftHandler) Correct(c *gin.Context) {
	draftID, err := strconv.ParseUint(c.Param("draft_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	var req dto.CorrectDraftReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	draft, err := s.draftService.Correct(c.Request.Context(), draftID, req.CorrectionPrompt)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, draft)
}

func (s *MasterDraftHandler) Approve(c *gin.Context) {
	draftID, err := strconv.ParseUint(c.Param("draft_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	draft, err := s.draftService.Approve(c.Request.Context(), draftID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, draft)
}

func (s *MasterDraftHandler) ListVersions(c *gin.Context) {
	briefID, err := strconv.ParseUint(c.Param("brief_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	drafts, err := s.draftService.ListVersions(c.Request.Context(), briefID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, drafts)
}

func (s *MasterDraftHandler) Latest(c *gin.Context) {
	briefID, err := strconv.ParseUint(c.Param("brief_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	draft, err := s.draftService.Latest(c.Request.Context(), briefID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, draft)
}

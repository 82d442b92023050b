package handler

import (
	"Postflow/internal/api/dto"
	"Postflow/internal/pkg/response"
	"Postflow/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type PublishHandler struct {
	publisherService service.PublisherService
}

func NewPublishHandler(publisherService service.PublisherService) *PublishHandler {
	return &PublishHandler{publisherService: publisherService}
}

// Publish 发起单帖投递。传输成功即发布，后续回调只做确认或改写。
func (s *PublishHandler) Publish(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	if err := s.publisherService.Publish(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"published": true})
}

// PublishAll 批量投递素材下所有已批准帖子，逐帖返回投递结果
func (s *PublishHandler) PublishAll(c *gin.Context) {
	briefID, err := strconv.ParseUint(c.Param("brief_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	outcomes, err := s.publisherService.PublishAll(c.Request.Context(), briefID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, outcomes)
}

// Callback 发布执行方的异步回调入口
func (s *PublishHandler) Callback(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	var req dto.PublishCallbackReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	err = s.publisherService.Reconcile(c.Request.Context(), id, &service.CallbackResult{
		Status:        req.Status,
		Message:       req.Message,
		LinkURL:       req.LinkURL,
		DispatchToken: req.DispatchToken,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

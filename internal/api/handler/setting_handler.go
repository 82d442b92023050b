package handler

import (
	"Postflow/internal/api/dto"
	"Postflow/internal/pkg/response"
	"Postflow/internal/service"

	"github.com/gin-gonic/gin"
)

type SettingHandler struct {
	settingService service.SettingService
}

func NewSettingHandler(settingService service.SettingService) *SettingHandler {
	return &SettingHandler{settingService: settingService}
}

func (s *SettingHandler) List(c *gin.Context) {
	settings, err := s.settingService.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, settings)
}

func (s *SettingHandler) Get(c *gin.Context) {
	key := c.Param("key")
	value, err := s.settingService.GetValue(c.Request.Context(), key)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"key": key, "value": value})
}

func (s *SettingHandler) Update(c *gin.Context) {
	key := c.Param("key")
	var req dto.UpdateSettingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := s.settingService.Update(c.Request.Context(), key, req.Value); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"key": key, "value": req.Value})
}

package handler

import (
	"Postflow/internal/api/dto"
	"Postflow/internal/model"
	"Postflow/internal/pkg/response"
	"Postflow/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
)

type PlatformHandler struct {
	platformService service.PlatformService
}

func NewPlatformHandler(platformService service.PlatformService) *PlatformHandler {
	return &PlatformHandler{platformService: platformService}
}

func (s *PlatformHandler) Create(c *gin.Context) {
	var req dto.CreatePlatformReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	var platform model.Platform
	if err := copier.Copy(&platform, &req); err != nil {
		response.Error(c, service.UnExpectedError)
		return
	}

	created, err := s.platformService.CreatePlatform(c.Request.Context(), &platform)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, created)
}

func (s *PlatformHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("platform_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	platform, err := s.platformService.GetPlatform(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, platform)
}

func (s *PlatformHandler) List(c *gin.Context) {
	platforms, err := s.platformService.ListPlatforms(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, platforms)
}

func (s *PlatformHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("platform_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	var req dto.UpdatePlatformReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	var update model.Platform
	if err := copier.Copy(&update, &req); err != nil {
		response.Error(c, service.UnExpectedError)
		return
	}

	platform, err := s.platformService.UpdatePlatform(c.Request.Context(), id, &update)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, platform)
}

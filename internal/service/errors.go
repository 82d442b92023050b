package service

import (
	"errors"
)

const (
	BadRequest          = 400
	NotFound            = 404
	Conflict            = 409
	InternalServerError = 500
	BadGateway          = 502
)

var (
	ErrParamInvalid          = errors.New("参数错误")
	ErrBriefNotFound         = errors.New("素材不存在")
	ErrDraftNotFound         = errors.New("主草稿不存在")
	ErrPostNotFound          = errors.New("帖子不存在")
	ErrPlatformNotFound      = errors.New("平台不存在")
	ErrSettingNotFound       = errors.New("配置项不存在")
	ErrDraftApproved         = errors.New("主草稿已批准，不可再修正")
	ErrDraftNotApproved      = errors.New("主草稿尚未批准")
	ErrMasterPromptMissing   = errors.New("主提示词未配置")
	ErrSinkNotConfigured     = errors.New("投递地址未配置")
	ErrGenerationFailed      = errors.New("内容生成失败")
	ErrDeliveryFailed        = errors.New("投递失败")
	ErrPostStateConflict     = errors.New("帖子当前状态不允许该操作")
	ErrPublishInFlight       = errors.New("该帖子正在发布中")
	ErrInvalidCallbackStatus = errors.New("回调状态非法")
	ErrDispatchTokenMismatch = errors.New("回调凭证不匹配")
	UnExpectedError          = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:          BadRequest,
	ErrBriefNotFound:         NotFound,
	ErrDraftNotFound:         NotFound,
	ErrPostNotFound:          NotFound,
	ErrPlatformNotFound:      NotFound,
	ErrSettingNotFound:       NotFound,
	ErrDraftApproved:         Conflict,
	ErrDraftNotApproved:      Conflict,
	ErrMasterPromptMissing:   InternalServerError,
	ErrSinkNotConfigured:     InternalServerError,
	ErrGenerationFailed:      BadGateway,
	ErrDeliveryFailed:        BadGateway,
	ErrPostStateConflict:     Conflict,
	ErrPublishInFlight:       Conflict,
	ErrInvalidCallbackStatus: BadRequest,
	ErrDispatchTokenMismatch: BadRequest,
	UnExpectedError:          InternalServerError,
}

package dto

type UpdateSettingReq struct {
	Value string `json:"value" binding:"required"`
}

package dto

// PublishCallbackReq 发布执行方异步回报的结果
type PublishCallbackReq struct {
	Status        string `json:"status" binding:"required,oneof=published failed"`
	Message       string `json:"message"`
	LinkURL       string `json:"link_url" binding:"omitempty,url"`
	DispatchToken string `json:"dispatch_token"`
}

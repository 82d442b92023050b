package dto

type CreatePlatformReq struct {
	Name           string  `json:"name" binding:"required,max=64"`
	DisplayName    string  `json:"display_name" binding:"required,max=128"`
	IsActive       bool    `json:"is_active"`
	WebhookURL     *string `json:"webhook_url" binding:"omitempty,url,max=512"`
	PromptTemplate string  `json:"prompt_template"`
}

type UpdatePlatformReq struct {
	DisplayName    string  `json:"display_name" binding:"omitempty,max=128"`
	IsActive       bool    `json:"is_active"`
	WebhookURL     *string `json:"webhook_url" binding:"omitempty,url,max=512"`
	PromptTemplate string  `json:"prompt_template"`
}

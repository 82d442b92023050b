package dto

// CorrectDraftReq 对主草稿提出修改意见
type CorrectDraftReq struct {
	CorrectionPrompt string `json:"correction_prompt" binding:"required"`
}

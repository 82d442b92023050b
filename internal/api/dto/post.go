package dto

// GeneratePostsReq 内容扇出请求，master_draft_id 为空时直接使用素材原文
type GeneratePostsReq struct {
	MasterDraftID *uint64 `json:"master_draft_id"`
}

type UpdatePostContentReq struct {
	Content string `json:"content" binding:"required"`
}

type CorrectPostReq struct {
	CorrectionPrompt string `json:"correction_prompt" binding:"required"`
}

type SchedulePostReq struct {
	ScheduledAt string `json:"scheduled_at" binding:"required"` // RFC3339
}

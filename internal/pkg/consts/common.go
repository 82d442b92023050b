package consts

const (
	MimePrefixImage = "image"
)

// 主草稿状态
const (
	DraftStatusDraft    = "draft"
	DraftStatusApproved = "approved"
)

// 帖子状态
const (
	PostStatusDraft     = "draft"
	PostStatusApproved  = "approved"
	PostStatusPublished = "published"
	PostStatusFailed    = "failed"
)

// 发布队列状态
const (
	QueueStatusPending   = "pending"
	QueueStatusCompleted = "completed"
	QueueStatusFailed    = "failed"
)

// 回调结论，与帖子终态同词
const (
	CallbackPublished = "published"
	CallbackFailed    = "failed"
)

// 通知类型
const (
	NotifySuccess = "success"
	NotifyError   = "error"
	NotifyInfo    = "info"
)

// Settings 键
const (
	SettingMasterPrompt   = "master_prompt"
	SettingSinkWebhookURL = "sink_webhook_url"
)

// 模板占位符
const BriefPlaceholder = "{{brief}}"

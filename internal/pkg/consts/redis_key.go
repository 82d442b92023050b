package consts

const (
	SettingCacheKey = "setting:value:"
)

const (
	PublishLock = "lock:publish:post:"
)

const (
	NotifyChannel = "notify:events"
)

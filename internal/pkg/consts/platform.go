package consts

// PlatformSequence 平台生成与展示的规范顺序，长文在前短文在后。
// 未列出的平台排在末尾，保持存储顺序。
var PlatformSequence = []string{
	"blog",
	"linkedin",
	"linkedin-personal",
	"reddit",
	"google-business",
	"twitter",
	"youtube-posts",
	"facebook",
	"instagram",
}

package dto

// CreateBriefReq 素材创建请求，multipart 表单提交，媒体与文档为可选文件
type CreateBriefReq struct {
	Title             string `form:"title" binding:"required,max=255"`
	Content           string `form:"content" binding:"required"`
	LinkURL           string `form:"link_url" binding:"omitempty,url,max=512"`
	SelectedPlatforms string `form:"selected_platforms" binding:"omitempty,json"`
}

type ListBriefReq struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

package httptransport

import (
	"github.com/gin-gonic/gin"

	"csoportal/backend/internal/service"
)

// NewsHandler 新闻与评论端点
type NewsHandler struct {
	news *service.NewsService
}

// NewNewsHandler 创建新闻处理器
func NewNewsHandler(news *service.NewsService) *NewsHandler {
	return &NewsHandler{news: news}
}

// Create 发布新闻
// POST /news/ (multipart/form-data)
func (h *NewsHandler) Create(c *gin.Context) {
	image, err := formUpload(c, "image")
	if err != nil {
		BadRequest(c, "failed to read image")
		return
	}

	news, err := h.news.Create(service.CreateNewsInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Author:      c.PostForm("author"),
		ReadTime:    c.PostForm("readTime"),
		Tag:         c.PostForm("tag"),
		Quotes:      c.PostForm("quotes"),
		Image:       image,
	})
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, "news created successfully", news)
}

// List 新闻列表
// GET /news/
func (h *NewsHandler) List(c *gin.Context) {
	list, err := h.news.List()
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, list)
}

// Get 新闻详情
// GET /news/:id
func (h *NewsHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	news, err := h.news.Get(id)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, news)
}

// Update 更新新闻
// PUT /news/:id (multipart/form-data)
func (h *NewsHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	image, err := formUpload(c, "image")
	if err != nil {
		BadRequest(c, "failed to read image")
		return
	}

	news, err := h.news.Update(id, service.UpdateNewsInput{
		Title:       optionalFormString(c, "title"),
		Description: optionalFormString(c, "description"),
		Author:      optionalFormString(c, "author"),
		ReadTime:    optionalFormString(c, "readTime"),
		Tag:         optionalFormString(c, "tag"),
		Quotes:      optionalFormString(c, "quotes"),
		Image:       image,
	})
	if err != nil {
		Error(c, err)
		return
	}
	SuccessWithMsg(c, "news updated successfully", news)
}

// Delete 删除新闻
// DELETE /news/:id
func (h *NewsHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.news.Delete(id); err != nil {
		Error(c, err)
		return
	}
	Deleted(c, "news deleted successfully")
}

type commentRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Content string `json:"content" binding:"required"`
	StaffID *int64 `json:"staffId"`
}

// AddComment 发表评论
// POST /news/:id/comments
func (h *NewsHandler) AddComment(c *gin.Context) {
	newsID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "content is required")
		return
	}

	input := service.CommentInput{
		Name:    req.Name,
		Email:   req.Email,
		Content: req.Content,
		StaffID: req.StaffID,
	}
	// 已登录职员的评论以会话身份为准
	if staffID := staffIDFromContext(c); staffID > 0 {
		input.StaffID = &staffID
	}

	comment, err := h.news.AddComment(newsID, input)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, "comment added successfully", comment)
}

// ListComments 某新闻下的评论列表
// GET /news/:id/comments
func (h *NewsHandler) ListComments(c *gin.Context) {
	newsID, ok := idParam(c, "id")
	if !ok {
		return
	}

	comments, err := h.news.ListComments(newsID)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, comments)
}

// DeleteComment 删除评论
// DELETE /news/comments/:commentId
func (h *NewsHandler) DeleteComment(c *gin.Context) {
	commentID, ok := idParam(c, "commentId")
	if !ok {
		return
	}

	if err := h.news.DeleteComment(commentID); err != nil {
		Error(c, err)
		return
	}
	Deleted(c, "comment deleted successfully")
}

package httptransport

import (
	"github.com/gin-gonic/gin"

	"csoportal/backend/internal/domain"
	"csoportal/backend/internal/service"
)

// ContentHandler 门户静态内容端点
type ContentHandler struct {
	content *service.ContentService
}

// NewContentHandler 创建门户内容处理器
func NewContentHandler(content *service.ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

// ========== 轮播图 ==========

// CreateHeroSlide 新增轮播图
// POST /hero/ (multipart/form-data)
func (h *ContentHandler) CreateHeroSlide(c *gin.Context) {
	image, err := formUpload(c, "image")
	if err != nil {
		BadRequest(c, "failed to read image")
		return
	}

	slide, err := h.content.CreateHeroSlide(service.HeroSlideInput{
		Title:    c.PostForm("title"),
		Subtitle: c.PostForm("subtitle"),
		Image:    image,
	})
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, "hero slide created successfully", slide)
}

// ListHeroSlides 轮播图列表
// GET /hero/
func (h *ContentHandler) ListHeroSlides(c *gin.Context) {
	slides, err := h.content.ListHeroSlides()
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, slides)
}

// UpdateHeroSlide 更新轮播图
// PUT /hero/:id (multipart/form-data)
func (h *ContentHandler) UpdateHeroSlide(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	image, err := formUpload(c, "image")
	if err != nil {
		BadRequest(c, "failed to read image")
		return
	}

	slide, err := h.content.UpdateHeroSlide(id, service.HeroSlideInput{
		Title:    c.PostForm("title"),
		Subtitle: c.PostForm("subtitle"),
		Image:    image,
	})
	if err != nil {
		Error(c, err)
		return
	}
	SuccessWithMsg(c, "hero slide updated successfully", slide)
}

// DeleteHeroSlide 删除轮播图
// DELETE /hero/:id
func (h *ContentHandler) DeleteHeroSlide(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.content.DeleteHeroSlide(id); err != nil {
		Error(c, err)
		return
	}
	Deleted(c, "hero slide deleted successfully")
}

// ========== 关于页 ==========

// GetAbout 关于页内容
// GET /about/
func (h *ContentHandler) GetAbout(c *gin.Context) {
	about, err := h.content.GetAbout()
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, about)
}

// SaveAbout 保存关于页内容
// PUT /about/
func (h *ContentHandler) SaveAbout(c *gin.Context) {
	var about domain.About
	if err := c.ShouldBindJSON(&about); err != nil {
		BadRequest(c, "invalid request body")
		return
	}

	saved, err := h.content.SaveAbout(&about)
	if err != nil {
		Error(c, err)
		return
	}
	SuccessWithMsg(c, "about content saved", saved)
}

// ========== 联系页 ==========

// GetContactContent 联系页内容
// GET /contact/
func (h *ContentHandler) GetContactContent(c *gin.Context) {
	content, err := h.content.GetContactContent()
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, content)
}

// SaveContactContent 保存联系页内容
// PUT /contact/
func (h *ContentHandler) SaveContactContent(c *gin.Context) {
	var content domain.ContactContent
	if err := c.ShouldBindJSON(&content); err != nil {
		BadRequest(c, "invalid request body")
		return
	}

	saved, err := h.content.SaveContactContent(&content)
	if err != nil {
		Error(c, err)
		return
	}
	SuccessWithMsg(c, "contact content saved", saved)
}

// RelayContactMessage 访客提交联系消息
// POST /contact/message
func (h *ContentHandler) RelayContactMessage(c *gin.Context) {
	var msg domain.ContactMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		BadRequest(c, "invalid request body")
		return
	}

	if err := h.content.RelayContactMessage(&msg); err != nil {
		Error(c, err)
		return
	}
	SuccessWithMsg(c, "message sent successfully", nil)
}

// ========== 服务条目 ==========

type serviceRequest struct {
	Title   string `json:"title" binding:"required"`
	Summary string `json:"summary"`
}

// CreateService 新增服务条目
// POST /services/
func (h *ContentHandler) CreateService(c *gin.Context) {
	var req serviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "title is required")
		return
	}

	svc, err := h.content.CreateService(service.ServiceInput{
		Title:   req.Title,
		Summary: req.Summary,
	})
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, "service created successfully", svc)
}

// ListServices 服务条目列表
// GET /services/
func (h *ContentHandler) ListServices(c *gin.Context) {
	services, err := h.content.ListServices()
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, services)
}

// UpdateService 更新服务条目
// PUT /services/:id
func (h *ContentHandler) UpdateService(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req serviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "title is required")
		return
	}

	svc, err := h.content.UpdateService(id, service.ServiceInput{
		Title:   req.Title,
		Summary: req.Summary,
	})
	if err != nil {
		Error(c, err)
		return
	}
	SuccessWithMsg(c, "service updated successfully", svc)
}

// DeleteService 删除服务条目
// DELETE /services/:id
func (h *ContentHandler) DeleteService(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.content.DeleteService(id); err != nil {
		Error(c, err)
		return
	}
	Deleted(c, "service deleted successfully")
}

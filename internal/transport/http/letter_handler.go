package httptransport

import (
	"github.com/gin-gonic/gin"

	"csoportal/backend/internal/service"
)

// LetterHandler 信函端点
type LetterHandler struct {
	letters *service.LetterService
}

// NewLetterHandler 创建信函处理器
func NewLetterHandler(letters *service.LetterService) *LetterHandler {
	return &LetterHandler{letters: letters}
}

// Submit 创建信函
// POST /letters/submit (multipart/form-data)
func (h *LetterHandler) Submit(c *gin.Context) {
	attachment, err := formUpload(c, "attachment")
	if err != nil {
		BadRequest(c, "failed to read attachment")
		return
	}

	input := service.CreateLetterInput{
		Title:      c.PostForm("title"),
		Summary:    c.PostForm("summary"),
		Type:       c.PostForm("type"),
		SendToAll:  formBool(c.PostForm("sendToAll")),
		CreatedBy:  staffIDFromContext(c),
		Attachment: attachment,
	}
	// 收件列表接受 JSON 数组字符串或单个 id
	if raw, ok := c.GetPostForm("selectedCsos"); ok {
		input.SelectedCSOs = raw
	}

	letter, err := h.letters.Create(c.Request.Context(), input)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, "letter created successfully", letter)
}

// List 管理端信函列表
// GET /letters/
func (h *LetterHandler) List(c *gin.Context) {
	letters, err := h.letters.List(c.Request.Context())
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, letters)
}

// Get 管理端信函详情
// GET /letters/get/:id
func (h *LetterHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	letter, err := h.letters.Get(c.Request.Context(), id)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, letter)
}

// Update 更新信函
// PUT /letters/:id (multipart/form-data)
func (h *LetterHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	attachment, err := formUpload(c, "attachment")
	if err != nil {
		BadRequest(c, "failed to read attachment")
		return
	}

	input := service.UpdateLetterInput{
		Title:      optionalFormString(c, "title"),
		Summary:    optionalFormString(c, "summary"),
		Type:       optionalFormString(c, "type"),
		Attachment: attachment,
	}
	if raw, ok := c.GetPostForm("sendToAll"); ok {
		sendToAll := formBool(raw)
		input.SendToAll = &sendToAll
	}
	if raw, ok := c.GetPostForm("selectedCsos"); ok {
		input.SelectedCSOs = raw
	}

	letter, err := h.letters.Update(c.Request.Context(), id, input)
	if err != nil {
		Error(c, err)
		return
	}
	SuccessWithMsg(c, "letter updated successfully", letter)
}

// Delete 删除信函
// DELETE /letters/:id
func (h *LetterHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.letters.Delete(c.Request.Context(), id); err != nil {
		Error(c, err)
		return
	}
	Deleted(c, "letter deleted successfully")
}

// ListForCSO 组织视角的信函列表
// GET /letters/cso/:csoId
func (h *LetterHandler) ListForCSO(c *gin.Context) {
	csoID, ok := idParam(c, "csoId")
	if !ok {
		return
	}

	letters, err := h.letters.ListForCSO(c.Request.Context(), csoID)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, letters)
}

// MarkRead 标记某组织已读某信函
// PUT /letters/:id/mark-read/:csoId
func (h *LetterHandler) MarkRead(c *gin.Context) {
	letterID, ok := idParam(c, "id")
	if !ok {
		return
	}
	csoID, ok := idParam(c, "csoId")
	if !ok {
		return
	}

	result, err := h.letters.MarkRead(c.Request.Context(), letterID, csoID)
	if err != nil {
		Error(c, err)
		return
	}
	SuccessWithMsg(c, "letter marked as read", result)
}

// UnreadCount 某组织的未读信函数量
// GET /letters/cso/:csoId/unread-count
func (h *LetterHandler) UnreadCount(c *gin.Context) {
	csoID, ok := idParam(c, "csoId")
	if !ok {
		return
	}

	count, err := h.letters.UnreadCount(c.Request.Context(), csoID)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, gin.H{"csoId": csoID, "unreadCount": count})
}

package httptransport

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"csoportal/backend/internal/service"
)

// FormHandler 申请表模板与申请端点
type FormHandler struct {
	forms *service.FormService
}

// NewFormHandler 创建申请表处理器
func NewFormHandler(forms *service.FormService) *FormHandler {
	return &FormHandler{forms: forms}
}

type formRequest struct {
	FormName  string `json:"formName"`
	Schema    string `json:"schema"`
	ExpiresAt string `json:"expiresAt"` // RFC3339，可空
}

func parseExpiry(raw string) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// CreateForm 创建表单模板
// POST /forms/
func (h *FormHandler) CreateForm(c *gin.Context) {
	var req formRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}

	expiresAt, ok := parseExpiry(req.ExpiresAt)
	if !ok {
		BadRequest(c, "expiresAt must be RFC3339")
		return
	}

	form, err := h.forms.CreateForm(service.CreateFormInput{
		FormName:  req.FormName,
		Schema:    req.Schema,
		ExpiresAt: expiresAt,
		CreatedBy: staffIDFromContext(c),
	})
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, "form created successfully", form)
}

// ListForms 表单模板列表
// GET /forms/
func (h *FormHandler) ListForms(c *gin.Context) {
	forms, err := h.forms.ListForms()
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, forms)
}

// GetForm 表单模板详情
// GET /forms/:id
func (h *FormHandler) GetForm(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	form, err := h.forms.GetForm(id)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, form)
}

// UpdateForm 更新表单模板
// PUT /forms/:id
func (h *FormHandler) UpdateForm(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		FormName  *string `json:"formName"`
		Schema    *string `json:"schema"`
		ExpiresAt *string `json:"expiresAt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}

	input := service.UpdateFormInput{
		FormName: req.FormName,
		Schema:   req.Schema,
	}
	if req.ExpiresAt != nil {
		expiresAt, ok := parseExpiry(*req.ExpiresAt)
		if !ok {
			BadRequest(c, "expiresAt must be RFC3339")
			return
		}
		input.ExpiresAt = expiresAt
	}

	form, err := h.forms.UpdateForm(id, input)
	if err != nil {
		Error(c, err)
		return
	}
	SuccessWithMsg(c, "form updated successfully", form)
}

// DeleteForm 删除表单模板及其全部申请
// DELETE /forms/:id
func (h *FormHandler) DeleteForm(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.forms.DeleteForm(id); err != nil {
		Error(c, err)
		return
	}
	Deleted(c, "form deleted successfully")
}

// SubmitApplication 组织提交申请
// POST /forms/:id/applications (multipart/form-data)
func (h *FormHandler) SubmitApplication(c *gin.Context) {
	formID, ok := idParam(c, "id")
	if !ok {
		return
	}

	csoID, err := strconv.ParseInt(c.PostForm("csoId"), 10, 64)
	if err != nil || csoID <= 0 {
		BadRequest(c, "invalid csoId")
		return
	}

	file, err := formUpload(c, "file")
	if err != nil {
		BadRequest(c, "failed to read file")
		return
	}

	app, err := h.forms.SubmitApplication(service.SubmitApplicationInput{
		FormID:  formID,
		CSOID:   csoID,
		Payload: c.PostForm("payload"),
		File:    file,
	})
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, "application submitted successfully", app)
}

// ListApplicationsByForm 某模板下的申请列表
// GET /forms/:id/applications
func (h *FormHandler) ListApplicationsByForm(c *gin.Context) {
	formID, ok := idParam(c, "id")
	if !ok {
		return
	}

	apps, err := h.forms.ListApplicationsByForm(formID)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, apps)
}

// ListApplicationsByCSO 某组织提交的申请列表
// GET /applications/cso/:csoId
func (h *FormHandler) ListApplicationsByCSO(c *gin.Context) {
	csoID, ok := idParam(c, "csoId")
	if !ok {
		return
	}

	apps, err := h.forms.ListApplicationsByCSO(csoID)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, apps)
}

// GetApplication 申请详情
// GET /applications/:id
func (h *FormHandler) GetApplication(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	app, err := h.forms.GetApplication(id)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, app)
}

// UpdateApplication 组织修改申请
// PUT /applications/:id (multipart/form-data)
func (h *FormHandler) UpdateApplication(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	file, err := formUpload(c, "file")
	if err != nil {
		BadRequest(c, "failed to read file")
		return
	}

	app, err := h.forms.UpdateApplication(id, service.UpdateApplicationInput{
		Payload: optionalFormString(c, "payload"),
		File:    file,
	})
	if err != nil {
		Error(c, err)
		return
	}
	SuccessWithMsg(c, "application updated successfully", app)
}

// SetApplicationStatus 管理端审批申请
// PATCH /applications/:id/status
func (h *FormHandler) SetApplicationStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "status is required")
		return
	}

	app, err := h.forms.SetApplicationStatus(id, req.Status)
	if err != nil {
		Error(c, err)
		return
	}
	SuccessWithMsg(c, "application status updated", app)
}

// SetUpdatePermission 管理端开放或关闭申请修改权限
// PATCH /applications/:id/permission
func (h *FormHandler) SetUpdatePermission(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Allowed *bool `json:"allowed" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Allowed == nil {
		BadRequest(c, "allowed is required")
		return
	}

	app, err := h.forms.SetUpdatePermission(id, *req.Allowed)
	if err != nil {
		Error(c, err)
		return
	}
	SuccessWithMsg(c, "application permission updated", app)
}

// DeleteApplication 删除申请
// DELETE /applications/:id
func (h *FormHandler) DeleteApplication(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.forms.DeleteApplication(id); err != nil {
		Error(c, err)
		return
	}
	Deleted(c, "application deleted successfully")
}

package httptransport

import (
	"github.com/gin-gonic/gin"

	"csoportal/backend/internal/service"
)

// StaffHandler 员工账号端点
type StaffHandler struct {
	staff *service.StaffService
}

// NewStaffHandler 创建员工处理器
func NewStaffHandler(staff *service.StaffService) *StaffHandler {
	return &StaffHandler{staff: staff}
}

// Register 注册员工
// POST /staff/register (multipart/form-data)
func (h *StaffHandler) Register(c *gin.Context) {
	photo, err := formUpload(c, "photo")
	if err != nil {
		BadRequest(c, "failed to read photo")
		return
	}

	staff, err := h.staff.Register(service.RegisterStaffInput{
		Name:     c.PostForm("name"),
		Email:    c.PostForm("email"),
		Phone:    c.PostForm("phone"),
		Password: c.PostForm("password"),
		Role:     c.PostForm("role"),
		Photo:    photo,
	})
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, "staff registered successfully", staff)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 员工登录
// POST /staff/login
func (h *StaffHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "email and password are required")
		return
	}

	staff, tokens, err := h.staff.Login(req.Email, req.Password)
	if err != nil {
		Error(c, err)
		return
	}

	SuccessWithMsg(c, "login successful", gin.H{
		"staff":  staff,
		"tokens": tokens,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Refresh 刷新访问令牌
// POST /staff/refresh
func (h *StaffHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "refreshToken is required")
		return
	}

	accessToken, err := h.staff.Refresh(req.RefreshToken)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, gin.H{"accessToken": accessToken})
}

// Me 当前登录员工
// GET /staff/me
func (h *StaffHandler) Me(c *gin.Context) {
	staffID := staffIDFromContext(c)
	if staffID == 0 {
		Unauthorized(c, "unauthorized")
		return
	}

	staff, err := h.staff.Get(staffID)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, staff)
}

// List 员工列表
// GET /staff/
func (h *StaffHandler) List(c *gin.Context) {
	list, err := h.staff.List()
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, list)
}

// Get 员工详情
// GET /staff/:id
func (h *StaffHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	staff, err := h.staff.Get(id)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, staff)
}

// Update 更新员工资料
// PUT /staff/:id (multipart/form-data)
func (h *StaffHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	photo, err := formUpload(c, "photo")
	if err != nil {
		BadRequest(c, "failed to read photo")
		return
	}

	staff, err := h.staff.Update(id, service.UpdateStaffInput{
		Name:     optionalFormString(c, "name"),
		Email:    optionalFormString(c, "email"),
		Phone:    optionalFormString(c, "phone"),
		Role:     optionalFormString(c, "role"),
		Password: optionalFormString(c, "password"),
		Photo:    photo,
	})
	if err != nil {
		Error(c, err)
		return
	}
	SuccessWithMsg(c, "staff updated successfully", staff)
}

// Delete 删除员工
// DELETE /staff/:id
func (h *StaffHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.staff.Delete(id); err != nil {
		Error(c, err)
		return
	}
	Deleted(c, "staff deleted successfully")
}

package httptransport

import (
	"github.com/gin-gonic/gin"

	"csoportal/backend/internal/service"
)

// CSOHandler 社会组织名录端点
type CSOHandler struct {
	csos *service.CSOService
}

// NewCSOHandler 创建组织名录处理器
func NewCSOHandler(csos *service.CSOService) *CSOHandler {
	return &CSOHandler{csos: csos}
}

type csoRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	Phone string `json:"phone"`
}

// Create 登记组织
// POST /csos/
func (h *CSOHandler) Create(c *gin.Context) {
	var req csoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "name and email are required")
		return
	}

	cso, err := h.csos.Create(service.CSOInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, "cso created successfully", cso)
}

// List 组织列表
// GET /csos/
func (h *CSOHandler) List(c *gin.Context) {
	list, err := h.csos.List()
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, list)
}

// Get 组织详情
// GET /csos/:id
func (h *CSOHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	cso, err := h.csos.Get(id)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, cso)
}

// Update 更新组织资料
// PUT /csos/:id
func (h *CSOHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req csoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "name and email are required")
		return
	}

	cso, err := h.csos.Update(id, service.CSOInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		Error(c, err)
		return
	}
	SuccessWithMsg(c, "cso updated successfully", cso)
}

// Delete 删除组织
// DELETE /csos/:id
func (h *CSOHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.csos.Delete(id); err != nil {
		Error(c, err)
		return
	}
	Deleted(c, "cso deleted successfully")
}

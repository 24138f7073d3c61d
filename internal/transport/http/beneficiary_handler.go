package httptransport

import (
	"github.com/gin-gonic/gin"

	"csoportal/backend/internal/service"
)

// BeneficiaryHandler 受益人档案端点
type BeneficiaryHandler struct {
	beneficiaries *service.BeneficiaryService
}

// NewBeneficiaryHandler 创建受益人处理器
func NewBeneficiaryHandler(beneficiaries *service.BeneficiaryService) *BeneficiaryHandler {
	return &BeneficiaryHandler{beneficiaries: beneficiaries}
}

// Create 登记受益人
// POST /beneficiaries/ (multipart/form-data)
func (h *BeneficiaryHandler) Create(c *gin.Context) {
	idFile, err := formUpload(c, "idFile")
	if err != nil {
		BadRequest(c, "failed to read id file")
		return
	}
	photo, err := formUpload(c, "photo")
	if err != nil {
		BadRequest(c, "failed to read photo")
		return
	}

	b, err := h.beneficiaries.Create(service.CreateBeneficiaryInput{
		FullName: c.PostForm("fullName"),
		Email:    c.PostForm("email"),
		Phone:    c.PostForm("phone"),
		Address:  c.PostForm("address"),
		IDFile:   idFile,
		Photo:    photo,
	})
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, "beneficiary created successfully", b)
}

// List 受益人列表
// GET /beneficiaries/
func (h *BeneficiaryHandler) List(c *gin.Context) {
	list, err := h.beneficiaries.List()
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, list)
}

// Get 受益人详情
// GET /beneficiaries/:id
func (h *BeneficiaryHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	b, err := h.beneficiaries.Get(id)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, b)
}

// Update 更新受益人档案
// PUT /beneficiaries/:id (multipart/form-data)
func (h *BeneficiaryHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	idFile, err := formUpload(c, "idFile")
	if err != nil {
		BadRequest(c, "failed to read id file")
		return
	}
	photo, err := formUpload(c, "photo")
	if err != nil {
		BadRequest(c, "failed to read photo")
		return
	}

	b, err := h.beneficiaries.Update(id, service.UpdateBeneficiaryInput{
		FullName: optionalFormString(c, "fullName"),
		Email:    optionalFormString(c, "email"),
		Phone:    optionalFormString(c, "phone"),
		Address:  optionalFormString(c, "address"),
		IDFile:   idFile,
		Photo:    photo,
	})
	if err != nil {
		Error(c, err)
		return
	}
	SuccessWithMsg(c, "beneficiary updated successfully", b)
}

// Delete 删除受益人
// DELETE /beneficiaries/:id
func (h *BeneficiaryHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.beneficiaries.Delete(id); err != nil {
		Error(c, err)
		return
	}
	Deleted(c, "beneficiary deleted successfully")
}

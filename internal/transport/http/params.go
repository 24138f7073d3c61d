package httptransport

import (
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"csoportal/backend/internal/middleware"
	"csoportal/backend/internal/service"
)

// idParam 解析路径中的数字 id
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		BadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// staffIDFromContext 读取认证中间件写入的员工 id
func staffIDFromContext(c *gin.Context) int64 {
	val, exists := c.Get(middleware.ContextStaffID)
	if !exists {
		return 0
	}
	id, _ := val.(int64)
	return id
}

// formUpload 从 multipart 表单读取一个文件，字段缺失时返回 nil
func formUpload(c *gin.Context, field string) (*service.Upload, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		// 字段缺失不是错误
		return nil, nil
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return &service.Upload{
		Filename: fileHeader.Filename,
		Mimetype: fileHeader.Header.Get("Content-Type"),
		Data:     data,
	}, nil
}

// formBool 解析表单里的布尔字段，接受 true/false/1/0
func formBool(value string) bool {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}
	return b
}

// optionalFormString 返回表单字段的指针，字段缺失时为 nil
func optionalFormString(c *gin.Context, field string) *string {
	if value, ok := c.GetPostForm(field); ok {
		return &value
	}
	return nil
}

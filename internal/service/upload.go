package service

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"csoportal/backend/internal/config"
	"csoportal/backend/internal/security"
)

var (
	// ErrFileTooLarge 上传文件超过大小上限错误
	ErrFileTooLarge = errors.New("file exceeds the maximum allowed size")
	// ErrFileTypeNotAllowed 上传文件类型不在白名单错误
	ErrFileTypeNotAllowed = errors.New("file type is not allowed")
)

// Upload 表示一次通过 multipart 表单接收的上传内容
type Upload struct {
	Filename string
	Mimetype string
	Data     []byte
}

// validateUpload 校验上传的扩展名白名单与大小上限
func validateUpload(upload *Upload, cfg config.UploadConfig) error {
	if upload == nil {
		return nil
	}

	if int64(len(upload.Data)) > cfg.MaxSizeBytes {
		return fmt.Errorf("%w (max %d bytes)", ErrFileTooLarge, cfg.MaxSizeBytes)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(upload.Filename), "."))
	allowed := false
	for _, a := range cfg.AllowedExts {
		if ext == a {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: .%s", ErrFileTypeNotAllowed, ext)
	}

	if err := security.CheckUpload(upload.Data); err != nil {
		return fmt.Errorf("%w: %s", security.ErrUnsafeUpload, err)
	}
	return nil
}

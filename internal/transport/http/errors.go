package httptransport

import (
	"errors"
	"net/http"

	"csoportal/backend/internal/auth"
	"csoportal/backend/internal/auth/jwt"
	"csoportal/backend/internal/security"
	"csoportal/backend/internal/service"
	"csoportal/backend/internal/storage"
)

// 业务错误到 HTTP 状态码的映射表
var errorStatus = map[error]int{
	// 资源不存在
	storage.ErrLetterNotFound:         http.StatusNotFound,
	storage.ErrStaffNotFound:          http.StatusNotFound,
	storage.ErrCSONotFound:            http.StatusNotFound,
	storage.ErrBeneficiaryNotFound:    http.StatusNotFound,
	storage.ErrFormNotFound:           http.StatusNotFound,
	storage.ErrApplicationNotFound:    http.StatusNotFound,
	storage.ErrNewsNotFound:           http.StatusNotFound,
	storage.ErrCommentNotFound:        http.StatusNotFound,
	storage.ErrHeroSlideNotFound:      http.StatusNotFound,
	storage.ErrAboutNotFound:          http.StatusNotFound,
	storage.ErrContactContentNotFound: http.StatusNotFound,
	storage.ErrServiceNotFound:        http.StatusNotFound,

	// 资源冲突
	storage.ErrStaffExists:       http.StatusConflict,
	storage.ErrCSOExists:         http.StatusConflict,
	storage.ErrBeneficiaryExists: http.StatusConflict,
	storage.ErrApplicationExists: http.StatusConflict,

	// 校验失败
	service.ErrInvalidLetterType:          http.StatusBadRequest,
	service.ErrLetterTitleRequired:        http.StatusBadRequest,
	service.ErrStaffNameRequired:          http.StatusBadRequest,
	service.ErrInvalidStaffRole:           http.StatusBadRequest,
	service.ErrCSONameRequired:            http.StatusBadRequest,
	service.ErrBeneficiaryNameRequired:    http.StatusBadRequest,
	service.ErrFormNameRequired:           http.StatusBadRequest,
	service.ErrInvalidFormSchema:          http.StatusBadRequest,
	service.ErrInvalidApplicationPayload:  http.StatusUnprocessableEntity,
	service.ErrInvalidApplicationStatus:   http.StatusBadRequest,
	service.ErrNewsTitleRequired:          http.StatusBadRequest,
	service.ErrCommentContentRequired:     http.StatusBadRequest,
	service.ErrSlideImageRequired:         http.StatusBadRequest,
	service.ErrServiceTitleRequired:       http.StatusBadRequest,
	service.ErrContactMessageIncomplete:   http.StatusBadRequest,
	auth.ErrInvalidEmail:                  http.StatusBadRequest,

	// 上传与内容安全
	service.ErrFileTooLarge:       http.StatusRequestEntityTooLarge,
	service.ErrFileTypeNotAllowed: http.StatusUnsupportedMediaType,
	security.ErrUnsafeUpload:      http.StatusUnsupportedMediaType,
	security.ErrContentRejected:   http.StatusUnprocessableEntity,

	// 业务规则
	service.ErrFormExpired:             http.StatusForbidden,
	service.ErrApplicationLocked:       http.StatusForbidden,
	service.ErrContactRelayUnavailable: http.StatusServiceUnavailable,

	// 认证
	auth.ErrInvalidCredentials: http.StatusUnauthorized,
	jwt.ErrInvalidToken:        http.StatusUnauthorized,
	jwt.ErrExpiredToken:        http.StatusUnauthorized,
}

// classifyError 把业务错误翻译成 HTTP 状态码和对外消息。
// 未映射的错误按 500 处理并隐藏内部细节。
func classifyError(err error) (int, string) {
	for sentinel, status := range errorStatus {
		if errors.Is(err, sentinel) {
			return status, err.Error()
		}
	}
	return http.StatusInternalServerError, "internal server error"
}

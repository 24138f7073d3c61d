package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.uber.org/zap"

	"csoportal/backend/internal/cache"
	"csoportal/backend/internal/config"
	"csoportal/backend/internal/domain"
	"csoportal/backend/internal/monitoring"
	"csoportal/backend/internal/storage"
	"csoportal/backend/internal/storage/filesystem"
)

var (
	// ErrFormNameRequired 表单名称缺失错误
	ErrFormNameRequired = errors.New("form name is required")
	// ErrInvalidFormSchema 表单 schema 不是合法的 JSON Schema 错误
	ErrInvalidFormSchema = errors.New("form schema is not a valid JSON Schema")
	// ErrFormExpired 表单已过截止时间错误
	ErrFormExpired = errors.New("form submission deadline has passed")
	// ErrInvalidApplicationPayload 申请内容不符合表单 schema 错误
	ErrInvalidApplicationPayload = errors.New("application payload does not match the form schema")
	// ErrInvalidApplicationStatus 非法申请状态错误
	ErrInvalidApplicationStatus = errors.New("status must be pending, approved or rejected")
	// ErrApplicationLocked 申请未开放修改错误
	ErrApplicationLocked = errors.New("application is not open for updates")
)

// FormService 封装申请表模板与组织申请的业务逻辑。
// 每份申请的内容在提交和修改时都按模板的 JSON Schema 校验。
type FormService struct {
	repo  storage.FormRepository
	files *filesystem.Store
	log   *zap.Logger

	uploadCfg config.UploadConfig

	// 编译后的 schema 按文本缓存，避免每次提交重复编译
	schemas *cache.TTLCache
}

// NewFormService 创建申请表业务服务
func NewFormService(
	repo storage.FormRepository,
	files *filesystem.Store,
	uploadCfg config.UploadConfig,
	log *zap.Logger,
) *FormService {
	return &FormService{
		repo:      repo,
		files:     files,
		uploadCfg: uploadCfg,
		schemas:   cache.NewTTLCache(10 * time.Minute),
		log:       log,
	}
}

// ========== 表单模板 ==========

// CreateFormInput 定义创建表单模板的输入
type CreateFormInput struct {
	FormName  string
	Schema    string
	ExpiresAt *time.Time
	CreatedBy int64
}

// CreateForm 创建表单模板，schema 必须能通过编译
func (s *FormService) CreateForm(input CreateFormInput) (*domain.Form, error) {
	if strings.TrimSpace(input.FormName) == "" {
		return nil, ErrFormNameRequired
	}
	if _, err := compileSchema(input.Schema); err != nil {
		return nil, err
	}

	form := &domain.Form{
		FormName:  input.FormName,
		Schema:    input.Schema,
		ExpiresAt: input.ExpiresAt,
		CreatedBy: input.CreatedBy,
	}
	if err := s.repo.CreateForm(form); err != nil {
		return nil, err
	}

	s.log.Info("form created", zap.Int64("id", form.ID), zap.String("name", form.FormName))
	return form, nil
}

// GetForm 按 id 查询表单模板
func (s *FormService) GetForm(id int64) (*domain.Form, error) {
	return s.repo.GetForm(id)
}

// ListForms 返回全部表单模板
func (s *FormService) ListForms() ([]domain.Form, error) {
	return s.repo.ListForms()
}

// UpdateFormInput 定义更新表单模板的输入，nil 字段保持不变
type UpdateFormInput struct {
	FormName  *string
	Schema    *string
	ExpiresAt *time.Time
}

// UpdateForm 更新表单模板。
// 已提交的申请不会按新 schema 重新校验。
func (s *FormService) UpdateForm(id int64, input UpdateFormInput) (*domain.Form, error) {
	form, err := s.repo.GetForm(id)
	if err != nil {
		return nil, err
	}

	if input.FormName != nil {
		if strings.TrimSpace(*input.FormName) == "" {
			return nil, ErrFormNameRequired
		}
		form.FormName = *input.FormName
	}
	if input.Schema != nil {
		if _, err := compileSchema(*input.Schema); err != nil {
			return nil, err
		}
		form.Schema = *input.Schema
	}
	if input.ExpiresAt != nil {
		form.ExpiresAt = input.ExpiresAt
	}

	if err := s.repo.UpdateForm(form); err != nil {
		return nil, err
	}

	s.log.Info("form updated", zap.Int64("id", id))
	return form, nil
}

// DeleteForm 删除表单模板及其全部申请，申请附件一并清理
func (s *FormService) DeleteForm(id int64) error {
	apps, err := s.repo.ListApplicationsByForm(id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteForm(id); err != nil {
		return err
	}

	for _, app := range apps {
		if app.FilePath == nil {
			continue
		}
		if err := s.files.Delete(*app.FilePath); err != nil {
			s.log.Warn("failed to delete application file",
				zap.Int64("application_id", app.ID), zap.String("path", *app.FilePath), zap.Error(err))
		}
	}

	s.log.Info("form deleted", zap.Int64("id", id), zap.Int("applications", len(apps)))
	return nil
}

// ========== 组织申请 ==========

// SubmitApplicationInput 定义提交申请的输入
type SubmitApplicationInput struct {
	FormID  int64
	CSOID   int64
	Payload string
	File    *Upload
}

// SubmitApplication 组织提交申请。
// 同一组织对同一模板只能提交一次；过期模板拒绝提交。
func (s *FormService) SubmitApplication(input SubmitApplicationInput) (*domain.Application, error) {
	form, err := s.repo.GetForm(input.FormID)
	if err != nil {
		return nil, err
	}
	if form.Expired(time.Now()) {
		return nil, ErrFormExpired
	}

	if err := s.validatePayload(form.Schema, input.Payload); err != nil {
		return nil, err
	}
	if err := validateUpload(input.File, s.uploadCfg); err != nil {
		return nil, err
	}

	app := &domain.Application{
		FormID:  input.FormID,
		CSOID:   input.CSOID,
		Payload: input.Payload,
		Status:  domain.ApplicationStatusPending,
	}

	var savedPath string
	if input.File != nil {
		savedPath, err = s.files.Save(filesystem.CategoryForms, input.File.Filename, input.File.Data)
		if err != nil {
			return nil, err
		}
		app.FilePath = &savedPath
		app.FileName = &input.File.Filename
	}

	if err := s.repo.CreateApplication(app); err != nil {
		if savedPath != "" {
			if cleanupErr := s.files.Delete(savedPath); cleanupErr != nil {
				s.log.Warn("failed to clean up orphan application file",
					zap.String("path", savedPath), zap.Error(cleanupErr))
			}
		}
		return nil, err
	}

	monitoring.ApplicationsSubmitted.Inc()
	s.log.Info("application submitted",
		zap.Int64("id", app.ID), zap.Int64("form_id", input.FormID), zap.Int64("cso_id", input.CSOID))
	return app, nil
}

// GetApplication 按 id 查询申请
func (s *FormService) GetApplication(id int64) (*domain.Application, error) {
	return s.repo.GetApplication(id)
}

// ListApplicationsByForm 返回某模板下的全部申请
func (s *FormService) ListApplicationsByForm(formID int64) ([]domain.Application, error) {
	return s.repo.ListApplicationsByForm(formID)
}

// ListApplicationsByCSO 返回某组织提交的全部申请
func (s *FormService) ListApplicationsByCSO(csoID int64) ([]domain.Application, error) {
	return s.repo.ListApplicationsByCSO(csoID)
}

// UpdateApplicationInput 定义组织修改申请的输入，nil 字段保持不变
type UpdateApplicationInput struct {
	Payload *string
	File    *Upload
}

// UpdateApplication 组织修改已提交的申请。
// 仅在管理端开放修改权限时允许，重新提交后权限关闭、状态回到待审。
func (s *FormService) UpdateApplication(id int64, input UpdateApplicationInput) (*domain.Application, error) {
	app, err := s.repo.GetApplication(id)
	if err != nil {
		return nil, err
	}
	if !app.UpdatePermission {
		return nil, ErrApplicationLocked
	}

	form, err := s.repo.GetForm(app.FormID)
	if err != nil {
		return nil, err
	}

	if input.Payload != nil {
		if err := s.validatePayload(form.Schema, *input.Payload); err != nil {
			return nil, err
		}
		app.Payload = *input.Payload
	}
	if err := validateUpload(input.File, s.uploadCfg); err != nil {
		return nil, err
	}

	oldPath := ""
	if app.FilePath != nil {
		oldPath = *app.FilePath
	}

	newPath := ""
	if input.File != nil {
		newPath, err = s.files.Save(filesystem.CategoryForms, input.File.Filename, input.File.Data)
		if err != nil {
			return nil, err
		}
		app.FilePath = &newPath
		app.FileName = &input.File.Filename
	}

	app.UpdatePermission = false
	app.Status = domain.ApplicationStatusPending

	if err := s.repo.UpdateApplication(app); err != nil {
		if newPath != "" {
			if cleanupErr := s.files.Delete(newPath); cleanupErr != nil {
				s.log.Warn("failed to clean up orphan application file",
					zap.String("path", newPath), zap.Error(cleanupErr))
			}
		}
		return nil, err
	}

	if newPath != "" && oldPath != "" {
		if err := s.files.Delete(oldPath); err != nil {
			s.log.Warn("failed to delete replaced application file",
				zap.String("path", oldPath), zap.Error(err))
		}
	}

	s.log.Info("application updated", zap.Int64("id", id))
	return app, nil
}

// SetApplicationStatus 管理端审批申请
func (s *FormService) SetApplicationStatus(id int64, status string) (*domain.Application, error) {
	if !domain.IsValidApplicationStatus(status) {
		return nil, ErrInvalidApplicationStatus
	}

	app, err := s.repo.GetApplication(id)
	if err != nil {
		return nil, err
	}

	app.Status = status
	if err := s.repo.UpdateApplication(app); err != nil {
		return nil, err
	}

	s.log.Info("application status changed", zap.Int64("id", id), zap.String("status", status))
	return app, nil
}

// SetUpdatePermission 管理端开放或关闭申请的修改权限
func (s *FormService) SetUpdatePermission(id int64, allowed bool) (*domain.Application, error) {
	app, err := s.repo.GetApplication(id)
	if err != nil {
		return nil, err
	}

	app.UpdatePermission = allowed
	if err := s.repo.UpdateApplication(app); err != nil {
		return nil, err
	}

	s.log.Info("application update permission changed",
		zap.Int64("id", id), zap.Bool("allowed", allowed))
	return app, nil
}

// DeleteApplication 删除申请，先删数据库行再删附件文件
func (s *FormService) DeleteApplication(id int64) error {
	app, err := s.repo.GetApplication(id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteApplication(id); err != nil {
		return err
	}

	if app.FilePath != nil {
		if err := s.files.Delete(*app.FilePath); err != nil {
			s.log.Warn("failed to delete application file",
				zap.Int64("id", id), zap.String("path", *app.FilePath), zap.Error(err))
		}
	}

	s.log.Info("application deleted", zap.Int64("id", id))
	return nil
}

// validatePayload 按模板 schema 校验申请内容
func (s *FormService) validatePayload(schemaStr, payload string) error {
	schema, err := s.compiledSchema(schemaStr)
	if err != nil {
		return err
	}

	instance, err := jsonschema.UnmarshalJSON(strings.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidApplicationPayload, err)
	}
	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidApplicationPayload, err)
	}
	return nil
}

// compiledSchema 返回缓存的编译结果，未命中时编译并写入缓存
func (s *FormService) compiledSchema(schemaStr string) (*jsonschema.Schema, error) {
	if cached, ok := s.schemas.Get(schemaStr); ok {
		return cached.(*jsonschema.Schema), nil
	}

	schema, err := compileSchema(schemaStr)
	if err != nil {
		return nil, err
	}
	s.schemas.Set(schemaStr, schema)
	return schema, nil
}

// compileSchema 编译 JSON Schema，非法时返回 ErrInvalidFormSchema
func compileSchema(schemaStr string) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaStr))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormSchema, err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("form.json", doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormSchema, err)
	}

	schema, err := compiler.Compile("form.json")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormSchema, err)
	}
	return schema, nil
}

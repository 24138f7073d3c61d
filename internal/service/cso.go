package service

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"csoportal/backend/internal/auth"
	"csoportal/backend/internal/domain"
	"csoportal/backend/internal/storage"
)

// ErrCSONameRequired 组织名称缺失错误
var ErrCSONameRequired = errors.New("cso name is required")

// CSOService 封装社会组织名录的业务逻辑
type CSOService struct {
	repo  storage.CSORepository
	staff storage.StaffRepository
	log   *zap.Logger
}

// NewCSOService 创建组织名录业务服务
func NewCSOService(repo storage.CSORepository, staff storage.StaffRepository, log *zap.Logger) *CSOService {
	return &CSOService{repo: repo, staff: staff, log: log}
}

// CSOInput 定义创建或更新组织的输入
type CSOInput struct {
	Name  string
	Email string
	Phone string
}

// Create 登记组织，联系方式与员工表交叉查重
func (s *CSOService) Create(input CSOInput) (*domain.CSO, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrCSONameRequired
	}
	if !auth.ValidateEmail(input.Email) {
		return nil, auth.ErrInvalidEmail
	}
	if err := s.checkContactFree(input.Email, input.Phone, 0); err != nil {
		return nil, err
	}

	cso := &domain.CSO{
		Name:  input.Name,
		Email: strings.ToLower(input.Email),
		Phone: input.Phone,
	}
	if err := s.repo.CreateCSO(cso); err != nil {
		return nil, err
	}

	s.log.Info("cso created", zap.Int64("id", cso.ID), zap.String("name", cso.Name))
	return cso, nil
}

// Get 按 id 查询组织
func (s *CSOService) Get(id int64) (*domain.CSO, error) {
	return s.repo.GetCSO(id)
}

// List 返回全部组织
func (s *CSOService) List() ([]domain.CSO, error) {
	return s.repo.ListCSOs()
}

// Update 更新组织资料
func (s *CSOService) Update(id int64, input CSOInput) (*domain.CSO, error) {
	cso, err := s.repo.GetCSO(id)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrCSONameRequired
	}
	if !auth.ValidateEmail(input.Email) {
		return nil, auth.ErrInvalidEmail
	}
	if err := s.checkContactFree(input.Email, input.Phone, id); err != nil {
		return nil, err
	}

	cso.Name = input.Name
	cso.Email = strings.ToLower(input.Email)
	cso.Phone = input.Phone

	if err := s.repo.UpdateCSO(cso); err != nil {
		return nil, err
	}

	s.log.Info("cso updated", zap.Int64("id", id))
	return cso, nil
}

// Delete 删除组织。
// 已发信函中的历史收件记录保持原样，读取侧按缺失组织处理。
func (s *CSOService) Delete(id int64) error {
	if err := s.repo.DeleteCSO(id); err != nil {
		return err
	}
	s.log.Info("cso deleted", zap.Int64("id", id))
	return nil
}

func (s *CSOService) checkContactFree(email, phone string, excludeCSOID int64) error {
	existing, err := s.repo.FindCSOByContact(email, phone)
	if err == nil {
		if existing.ID != excludeCSOID {
			return storage.ErrCSOExists
		}
	} else if !errors.Is(err, storage.ErrCSONotFound) {
		return err
	}

	if _, err := s.staff.FindStaffByContact(email, phone); err == nil {
		return storage.ErrCSOExists
	} else if !errors.Is(err, storage.ErrStaffNotFound) {
		return err
	}
	return nil
}

package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"csoportal/backend/internal/auth"
	"csoportal/backend/internal/auth/jwt"
	"csoportal/backend/internal/config"
	"csoportal/backend/internal/domain"
	"csoportal/backend/internal/monitoring"
	"csoportal/backend/internal/storage"
	"csoportal/backend/internal/storage/filesystem"
)

var (
	// ErrStaffNameRequired 员工姓名缺失错误
	ErrStaffNameRequired = errors.New("staff name is required")
	// ErrInvalidStaffRole 非法员工角色错误
	ErrInvalidStaffRole = errors.New("role must be staff, admin or sup_admin")
)

// StaffService 封装员工账号的业务逻辑。
// 邮箱和电话在员工表与组织名录之间全局唯一，
// 同一联系方式不允许既是员工又是组织。
type StaffService struct {
	repo  storage.StaffRepository
	csos  storage.CSORepository
	files *filesystem.Store
	tokens *jwt.Manager
	log   *zap.Logger

	uploadCfg config.UploadConfig
}

// NewStaffService 创建员工业务服务
func NewStaffService(
	repo storage.StaffRepository,
	csos storage.CSORepository,
	files *filesystem.Store,
	tokens *jwt.Manager,
	uploadCfg config.UploadConfig,
	log *zap.Logger,
) *StaffService {
	return &StaffService{
		repo:      repo,
		csos:      csos,
		files:     files,
		tokens:    tokens,
		uploadCfg: uploadCfg,
		log:       log,
	}
}

// RegisterStaffInput 定义员工注册输入
type RegisterStaffInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     string
	Photo    *Upload
}

// Register 注册员工账号。
// 员工编号由服务端按序分配，形如 Staff-0001，分配时校验唯一。
func (s *StaffService) Register(input RegisterStaffInput) (*domain.Staff, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrStaffNameRequired
	}
	if !auth.ValidateEmail(input.Email) {
		return nil, auth.ErrInvalidEmail
	}
	if err := auth.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = domain.RoleStaff
	}
	if !domain.IsValidStaffRole(role) {
		return nil, ErrInvalidStaffRole
	}

	if err := validateUpload(input.Photo, s.uploadCfg); err != nil {
		return nil, err
	}
	if err := s.checkContactFree(input.Email, input.Phone, 0); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	registrationID, err := s.nextRegistrationID()
	if err != nil {
		return nil, err
	}

	staff := &domain.Staff{
		RegistrationID: registrationID,
		Name:           input.Name,
		Email:          strings.ToLower(input.Email),
		Phone:          input.Phone,
		Password:       hash,
		Role:           role,
	}

	var savedPath string
	if input.Photo != nil {
		savedPath, err = s.files.Save(filesystem.CategoryStaff, input.Photo.Filename, input.Photo.Data)
		if err != nil {
			return nil, err
		}
		staff.PhotoPath = &savedPath
	}

	if err := s.repo.CreateStaff(staff); err != nil {
		if savedPath != "" {
			if cleanupErr := s.files.Delete(savedPath); cleanupErr != nil {
				s.log.Warn("failed to clean up orphan staff photo",
					zap.String("path", savedPath), zap.Error(cleanupErr))
			}
		}
		return nil, err
	}

	s.log.Info("staff registered",
		zap.Int64("id", staff.ID),
		zap.String("registration_id", staff.RegistrationID),
		zap.String("role", staff.Role),
	)
	return staff, nil
}

// Login 员工登录，成功时返回账号与令牌对
func (s *StaffService) Login(email, password string) (*domain.Staff, *jwt.TokenPair, error) {
	staff, err := s.repo.GetStaffByEmail(strings.ToLower(email))
	if err != nil {
		monitoring.LoginFailures.Inc()
		return nil, nil, auth.ErrInvalidCredentials
	}

	if !auth.CheckPassword(password, staff.Password) {
		monitoring.LoginFailures.Inc()
		s.log.Warn("login failed", zap.String("email", staff.Email))
		return nil, nil, auth.ErrInvalidCredentials
	}

	pair, err := s.tokens.GenerateTokenPair(staff.ID, staff.Email, staff.Role)
	if err != nil {
		return nil, nil, err
	}

	s.log.Info("staff logged in", zap.Int64("id", staff.ID))
	return staff, pair, nil
}

// Refresh 使用刷新令牌换取新的访问令牌
func (s *StaffService) Refresh(refreshToken string) (string, error) {
	return s.tokens.RefreshAccessToken(refreshToken)
}

// Get 按 id 查询员工
func (s *StaffService) Get(id int64) (*domain.Staff, error) {
	return s.repo.GetStaff(id)
}

// List 返回全部员工
func (s *StaffService) List() ([]domain.Staff, error) {
	return s.repo.ListStaff()
}

// UpdateStaffInput 定义员工更新输入，nil 字段保持不变
type UpdateStaffInput struct {
	Name     *string
	Email    *string
	Phone    *string
	Role     *string
	Password *string
	Photo    *Upload
}

// Update 更新员工资料。新头像先落盘，写库成功后再删旧文件。
func (s *StaffService) Update(id int64, input UpdateStaffInput) (*domain.Staff, error) {
	staff, err := s.repo.GetStaff(id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrStaffNameRequired
		}
		staff.Name = *input.Name
	}
	if input.Email != nil {
		if !auth.ValidateEmail(*input.Email) {
			return nil, auth.ErrInvalidEmail
		}
		staff.Email = strings.ToLower(*input.Email)
	}
	if input.Phone != nil {
		staff.Phone = *input.Phone
	}
	if input.Role != nil {
		if !domain.IsValidStaffRole(*input.Role) {
			return nil, ErrInvalidStaffRole
		}
		staff.Role = *input.Role
	}
	if input.Password != nil {
		if err := auth.ValidatePassword(*input.Password); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		staff.Password = hash
	}
	if err := validateUpload(input.Photo, s.uploadCfg); err != nil {
		return nil, err
	}

	if input.Email != nil || input.Phone != nil {
		if err := s.checkContactFree(staff.Email, staff.Phone, id); err != nil {
			return nil, err
		}
	}

	oldPath := ""
	if staff.PhotoPath != nil {
		oldPath = *staff.PhotoPath
	}

	newPath := ""
	if input.Photo != nil {
		newPath, err = s.files.Save(filesystem.CategoryStaff, input.Photo.Filename, input.Photo.Data)
		if err != nil {
			return nil, err
		}
		staff.PhotoPath = &newPath
	}

	if err := s.repo.UpdateStaff(staff); err != nil {
		if newPath != "" {
			if cleanupErr := s.files.Delete(newPath); cleanupErr != nil {
				s.log.Warn("failed to clean up orphan staff photo",
					zap.String("path", newPath), zap.Error(cleanupErr))
			}
		}
		return nil, err
	}

	if newPath != "" && oldPath != "" {
		if err := s.files.Delete(oldPath); err != nil {
			s.log.Warn("failed to delete replaced staff photo",
				zap.String("path", oldPath), zap.Error(err))
		}
	}

	s.log.Info("staff updated", zap.Int64("id", staff.ID))
	return staff, nil
}

// Delete 删除员工账号及其头像文件
func (s *StaffService) Delete(id int64) error {
	staff, err := s.repo.GetStaff(id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteStaff(id); err != nil {
		return err
	}

	if staff.PhotoPath != nil {
		if err := s.files.Delete(*staff.PhotoPath); err != nil {
			s.log.Warn("failed to delete staff photo",
				zap.Int64("id", id), zap.String("path", *staff.PhotoPath), zap.Error(err))
		}
	}

	s.log.Info("staff deleted", zap.Int64("id", id))
	return nil
}

// checkContactFree 校验邮箱和电话在员工表与组织名录中均未被占用。
// excludeStaffID 非零时跳过该员工自身，供更新场景使用。
func (s *StaffService) checkContactFree(email, phone string, excludeStaffID int64) error {
	existing, err := s.repo.FindStaffByContact(email, phone)
	if err == nil {
		if existing.ID != excludeStaffID {
			return storage.ErrStaffExists
		}
	} else if !errors.Is(err, storage.ErrStaffNotFound) {
		return err
	}

	if _, err := s.csos.FindCSOByContact(email, phone); err == nil {
		return storage.ErrStaffExists
	} else if !errors.Is(err, storage.ErrCSONotFound) {
		return err
	}
	return nil
}

// nextRegistrationID 分配下一个员工编号。
// 以最近分配的编号为基准递增，冲突时继续向后找。
func (s *StaffService) nextRegistrationID() (string, error) {
	latest, err := s.repo.LatestStaffRegistrationID()
	if err != nil {
		return "", err
	}

	next := 1
	if latest != "" {
		if n, err := strconv.Atoi(strings.TrimPrefix(latest, "Staff-")); err == nil {
			next = n + 1
		}
	}

	for {
		candidate := domain.FormatStaffRegistrationID(next)
		exists, err := s.repo.StaffRegistrationIDExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		next++
	}
}

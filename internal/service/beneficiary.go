package service

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"csoportal/backend/internal/auth"
	"csoportal/backend/internal/config"
	"csoportal/backend/internal/domain"
	"csoportal/backend/internal/storage"
	"csoportal/backend/internal/storage/filesystem"
)

// ErrBeneficiaryNameRequired 受益人姓名缺失错误
var ErrBeneficiaryNameRequired = errors.New("beneficiary full name is required")

// BeneficiaryService 封装受益人档案的业务逻辑。
// 受益人编号形如 LA-00042，基于数据库自增 id 在创建后补写。
type BeneficiaryService struct {
	repo  storage.BeneficiaryRepository
	files *filesystem.Store
	log   *zap.Logger

	uploadCfg config.UploadConfig
}

// NewBeneficiaryService 创建受益人业务服务
func NewBeneficiaryService(
	repo storage.BeneficiaryRepository,
	files *filesystem.Store,
	uploadCfg config.UploadConfig,
	log *zap.Logger,
) *BeneficiaryService {
	return &BeneficiaryService{repo: repo, files: files, uploadCfg: uploadCfg, log: log}
}

// CreateBeneficiaryInput 定义受益人登记输入
type CreateBeneficiaryInput struct {
	FullName string
	Email    string
	Phone    string
	Address  string
	IDFile   *Upload
	Photo    *Upload
}

// Create 登记受益人。
// 证件与照片先落盘，写库失败时删除已保存的孤儿文件。
func (s *BeneficiaryService) Create(input CreateBeneficiaryInput) (*domain.Beneficiary, error) {
	if strings.TrimSpace(input.FullName) == "" {
		return nil, ErrBeneficiaryNameRequired
	}
	if !auth.ValidateEmail(input.Email) {
		return nil, auth.ErrInvalidEmail
	}
	if err := validateUpload(input.IDFile, s.uploadCfg); err != nil {
		return nil, err
	}
	if err := validateUpload(input.Photo, s.uploadCfg); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindBeneficiaryByContact(input.Email, input.Phone); err == nil {
		return nil, storage.ErrBeneficiaryExists
	} else if !errors.Is(err, storage.ErrBeneficiaryNotFound) {
		return nil, err
	}

	b := &domain.Beneficiary{
		FullName: input.FullName,
		Email:    strings.ToLower(input.Email),
		Phone:    input.Phone,
		Address:  input.Address,
	}

	saved := make([]string, 0, 2)
	cleanup := func() {
		for _, path := range saved {
			if err := s.files.Delete(path); err != nil {
				s.log.Warn("failed to clean up orphan beneficiary file",
					zap.String("path", path), zap.Error(err))
			}
		}
	}

	if input.IDFile != nil {
		path, err := s.files.Save(filesystem.CategoryIDFiles, input.IDFile.Filename, input.IDFile.Data)
		if err != nil {
			return nil, err
		}
		saved = append(saved, path)
		b.IDFilePath = &path
	}
	if input.Photo != nil {
		path, err := s.files.Save(filesystem.CategoryPhotos, input.Photo.Filename, input.Photo.Data)
		if err != nil {
			cleanup()
			return nil, err
		}
		saved = append(saved, path)
		b.PhotoPath = &path
	}

	if err := s.repo.CreateBeneficiary(b); err != nil {
		cleanup()
		return nil, err
	}

	// 编号依赖自增 id，只能在插入后补写
	b.BeneficiaryID = domain.FormatBeneficiaryID(b.ID)
	if err := s.repo.UpdateBeneficiary(b); err != nil {
		return nil, err
	}

	s.log.Info("beneficiary created",
		zap.Int64("id", b.ID), zap.String("beneficiary_id", b.BeneficiaryID))
	return b, nil
}

// Get 按 id 查询受益人
func (s *BeneficiaryService) Get(id int64) (*domain.Beneficiary, error) {
	return s.repo.GetBeneficiary(id)
}

// List 返回全部受益人
func (s *BeneficiaryService) List() ([]domain.Beneficiary, error) {
	return s.repo.ListBeneficiaries()
}

// UpdateBeneficiaryInput 定义受益人更新输入，nil 字段保持不变
type UpdateBeneficiaryInput struct {
	FullName *string
	Email    *string
	Phone    *string
	Address  *string
	IDFile   *Upload
	Photo    *Upload
}

// Update 更新受益人档案。新文件先落盘，写库成功后再删旧文件。
func (s *BeneficiaryService) Update(id int64, input UpdateBeneficiaryInput) (*domain.Beneficiary, error) {
	b, err := s.repo.GetBeneficiary(id)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		if strings.TrimSpace(*input.FullName) == "" {
			return nil, ErrBeneficiaryNameRequired
		}
		b.FullName = *input.FullName
	}
	if input.Email != nil {
		if !auth.ValidateEmail(*input.Email) {
			return nil, auth.ErrInvalidEmail
		}
		b.Email = strings.ToLower(*input.Email)
	}
	if input.Phone != nil {
		b.Phone = *input.Phone
	}
	if input.Address != nil {
		b.Address = *input.Address
	}
	if err := validateUpload(input.IDFile, s.uploadCfg); err != nil {
		return nil, err
	}
	if err := validateUpload(input.Photo, s.uploadCfg); err != nil {
		return nil, err
	}

	if input.Email != nil || input.Phone != nil {
		if existing, err := s.repo.FindBeneficiaryByContact(b.Email, b.Phone); err == nil {
			if existing.ID != id {
				return nil, storage.ErrBeneficiaryExists
			}
		} else if !errors.Is(err, storage.ErrBeneficiaryNotFound) {
			return nil, err
		}
	}

	oldIDFile, oldPhoto := "", ""
	if b.IDFilePath != nil {
		oldIDFile = *b.IDFilePath
	}
	if b.PhotoPath != nil {
		oldPhoto = *b.PhotoPath
	}

	saved := make([]string, 0, 2)
	cleanup := func() {
		for _, path := range saved {
			if err := s.files.Delete(path); err != nil {
				s.log.Warn("failed to clean up orphan beneficiary file",
					zap.String("path", path), zap.Error(err))
			}
		}
	}

	newIDFile, newPhoto := "", ""
	if input.IDFile != nil {
		newIDFile, err = s.files.Save(filesystem.CategoryIDFiles, input.IDFile.Filename, input.IDFile.Data)
		if err != nil {
			return nil, err
		}
		saved = append(saved, newIDFile)
		b.IDFilePath = &newIDFile
	}
	if input.Photo != nil {
		newPhoto, err = s.files.Save(filesystem.CategoryPhotos, input.Photo.Filename, input.Photo.Data)
		if err != nil {
			cleanup()
			return nil, err
		}
		saved = append(saved, newPhoto)
		b.PhotoPath = &newPhoto
	}

	if err := s.repo.UpdateBeneficiary(b); err != nil {
		cleanup()
		return nil, err
	}

	if newIDFile != "" && oldIDFile != "" {
		if err := s.files.Delete(oldIDFile); err != nil {
			s.log.Warn("failed to delete replaced id file",
				zap.String("path", oldIDFile), zap.Error(err))
		}
	}
	if newPhoto != "" && oldPhoto != "" {
		if err := s.files.Delete(oldPhoto); err != nil {
			s.log.Warn("failed to delete replaced beneficiary photo",
				zap.String("path", oldPhoto), zap.Error(err))
		}
	}

	s.log.Info("beneficiary updated", zap.Int64("id", id))
	return b, nil
}

// Delete 删除受益人档案及其证件与照片文件
func (s *BeneficiaryService) Delete(id int64) error {
	b, err := s.repo.GetBeneficiary(id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteBeneficiary(id); err != nil {
		return err
	}

	for _, path := range []*string{b.IDFilePath, b.PhotoPath} {
		if path == nil {
			continue
		}
		if err := s.files.Delete(*path); err != nil {
			s.log.Warn("failed to delete beneficiary file",
				zap.Int64("id", id), zap.String("path", *path), zap.Error(err))
		}
	}

	s.log.Info("beneficiary deleted", zap.Int64("id", id))
	return nil
}

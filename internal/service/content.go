package service

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"csoportal/backend/internal/auth"
	"csoportal/backend/internal/config"
	"csoportal/backend/internal/domain"
	"csoportal/backend/internal/security"
	"csoportal/backend/internal/storage"
	"csoportal/backend/internal/storage/filesystem"
)

var (
	// ErrSlideImageRequired 轮播图缺少图片错误
	ErrSlideImageRequired = errors.New("hero slide image is required")
	// ErrServiceTitleRequired 服务条目标题缺失错误
	ErrServiceTitleRequired = errors.New("service title is required")
	// ErrContactMessageIncomplete 联系消息字段不全错误
	ErrContactMessageIncomplete = errors.New("contact message requires name, email and message")
	// ErrContactRelayUnavailable 联系消息转发未配置错误
	ErrContactRelayUnavailable = errors.New("contact mail relay is not configured")
)

// ContactRelay 把访客的联系消息转发给机构邮箱
type ContactRelay interface {
	SendContactMessage(msg *domain.ContactMessage) error
}

// ContentService 封装门户静态内容的业务逻辑：
// 轮播图、关于页、联系页、服务条目，以及访客联系消息的转发。
type ContentService struct {
	repo  storage.ContentRepository
	files *filesystem.Store
	log   *zap.Logger

	uploadCfg config.UploadConfig
	filter    *security.ContentFilter

	relay ContactRelay // 可选：联系消息邮件转发
}

// NewContentService 创建门户内容业务服务
func NewContentService(
	repo storage.ContentRepository,
	files *filesystem.Store,
	uploadCfg config.UploadConfig,
	log *zap.Logger,
) *ContentService {
	return &ContentService{
		repo:      repo,
		files:     files,
		uploadCfg: uploadCfg,
		filter:    security.NewContentFilter(),
		log:       log,
	}
}

// SetContactRelay 设置联系消息转发
func (s *ContentService) SetContactRelay(relay ContactRelay) { s.relay = relay }

// ========== 轮播图 ==========

// HeroSlideInput 定义轮播图输入
type HeroSlideInput struct {
	Title    string
	Subtitle string
	Image    *Upload
}

// CreateHeroSlide 新增轮播图，图片必填
func (s *ContentService) CreateHeroSlide(input HeroSlideInput) (*domain.HeroSlide, error) {
	if input.Image == nil {
		return nil, ErrSlideImageRequired
	}
	if err := validateUpload(input.Image, s.uploadCfg); err != nil {
		return nil, err
	}

	path, err := s.files.Save(filesystem.CategoryHero, input.Image.Filename, input.Image.Data)
	if err != nil {
		return nil, err
	}

	slide := &domain.HeroSlide{
		ImagePath: path,
		Title:     input.Title,
		Subtitle:  input.Subtitle,
	}
	if err := s.repo.CreateHeroSlide(slide); err != nil {
		if cleanupErr := s.files.Delete(path); cleanupErr != nil {
			s.log.Warn("failed to clean up orphan slide image",
				zap.String("path", path), zap.Error(cleanupErr))
		}
		return nil, err
	}

	s.log.Info("hero slide created", zap.Int64("id", slide.ID))
	return slide, nil
}

// ListHeroSlides 返回全部轮播图
func (s *ContentService) ListHeroSlides() ([]domain.HeroSlide, error) {
	return s.repo.ListHeroSlides()
}

// UpdateHeroSlide 更新轮播图。新图片先落盘，写库成功后再删旧文件。
func (s *ContentService) UpdateHeroSlide(id int64, input HeroSlideInput) (*domain.HeroSlide, error) {
	slide, err := s.repo.GetHeroSlide(id)
	if err != nil {
		return nil, err
	}

	slide.Title = input.Title
	slide.Subtitle = input.Subtitle

	if err := validateUpload(input.Image, s.uploadCfg); err != nil {
		return nil, err
	}

	oldPath := slide.ImagePath
	newPath := ""
	if input.Image != nil {
		newPath, err = s.files.Save(filesystem.CategoryHero, input.Image.Filename, input.Image.Data)
		if err != nil {
			return nil, err
		}
		slide.ImagePath = newPath
	}

	if err := s.repo.UpdateHeroSlide(slide); err != nil {
		if newPath != "" {
			if cleanupErr := s.files.Delete(newPath); cleanupErr != nil {
				s.log.Warn("failed to clean up orphan slide image",
					zap.String("path", newPath), zap.Error(cleanupErr))
			}
		}
		return nil, err
	}

	if newPath != "" && oldPath != "" {
		if err := s.files.Delete(oldPath); err != nil {
			s.log.Warn("failed to delete replaced slide image",
				zap.String("path", oldPath), zap.Error(err))
		}
	}

	s.log.Info("hero slide updated", zap.Int64("id", id))
	return slide, nil
}

// DeleteHeroSlide 删除轮播图及其图片文件
func (s *ContentService) DeleteHeroSlide(id int64) error {
	slide, err := s.repo.GetHeroSlide(id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteHeroSlide(id); err != nil {
		return err
	}

	if slide.ImagePath != "" {
		if err := s.files.Delete(slide.ImagePath); err != nil {
			s.log.Warn("failed to delete slide image",
				zap.Int64("id", id), zap.String("path", slide.ImagePath), zap.Error(err))
		}
	}

	s.log.Info("hero slide deleted", zap.Int64("id", id))
	return nil
}

// ========== 单例内容 ==========

// GetAbout 查询关于页内容
func (s *ContentService) GetAbout() (*domain.About, error) {
	return s.repo.GetAbout()
}

// SaveAbout 保存关于页内容，不存在则创建
func (s *ContentService) SaveAbout(about *domain.About) (*domain.About, error) {
	if err := s.repo.SaveAbout(about); err != nil {
		return nil, err
	}
	s.log.Info("about content saved", zap.Int64("id", about.ID))
	return about, nil
}

// GetContactContent 查询联系页内容
func (s *ContentService) GetContactContent() (*domain.ContactContent, error) {
	return s.repo.GetContactContent()
}

// SaveContactContent 保存联系页内容，不存在则创建
func (s *ContentService) SaveContactContent(content *domain.ContactContent) (*domain.ContactContent, error) {
	if err := s.repo.SaveContactContent(content); err != nil {
		return nil, err
	}
	s.log.Info("contact content saved", zap.Int64("id", content.ID))
	return content, nil
}

// RelayContactMessage 把访客联系消息转发到机构邮箱。
// 消息不落库，转发即完成。
func (s *ContentService) RelayContactMessage(msg *domain.ContactMessage) error {
	if strings.TrimSpace(msg.Name) == "" || strings.TrimSpace(msg.Message) == "" {
		return ErrContactMessageIncomplete
	}
	if !auth.ValidateEmail(msg.Email) {
		return auth.ErrInvalidEmail
	}
	if err := s.filter.Check(msg.Message); err != nil {
		s.log.Warn("contact message rejected by content filter", zap.String("from", msg.Email))
		return err
	}
	if s.relay == nil {
		return ErrContactRelayUnavailable
	}

	if err := s.relay.SendContactMessage(msg); err != nil {
		s.log.Error("failed to relay contact message", zap.Error(err))
		return err
	}

	s.log.Info("contact message relayed", zap.String("from", msg.Email))
	return nil
}

// ========== 服务条目 ==========

// ServiceInput 定义服务条目输入
type ServiceInput struct {
	Title   string
	Summary string
}

// CreateService 新增服务条目
func (s *ContentService) CreateService(input ServiceInput) (*domain.Service, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrServiceTitleRequired
	}

	service := &domain.Service{Title: input.Title, Summary: input.Summary}
	if err := s.repo.CreateService(service); err != nil {
		return nil, err
	}

	s.log.Info("service created", zap.Int64("id", service.ID))
	return service, nil
}

// ListServices 返回全部服务条目
func (s *ContentService) ListServices() ([]domain.Service, error) {
	return s.repo.ListServices()
}

// UpdateService 更新服务条目
func (s *ContentService) UpdateService(id int64, input ServiceInput) (*domain.Service, error) {
	service, err := s.repo.GetService(id)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrServiceTitleRequired
	}
	service.Title = input.Title
	service.Summary = input.Summary

	if err := s.repo.UpdateService(service); err != nil {
		return nil, err
	}

	s.log.Info("service updated", zap.Int64("id", id))
	return service, nil
}

// DeleteService 删除服务条目
func (s *ContentService) DeleteService(id int64) error {
	if err := s.repo.DeleteService(id); err != nil {
		return err
	}
	s.log.Info("service deleted", zap.Int64("id", id))
	return nil
}

package service

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"csoportal/backend/internal/config"
	"csoportal/backend/internal/domain"
	"csoportal/backend/internal/security"
	"csoportal/backend/internal/storage"
	"csoportal/backend/internal/storage/filesystem"
)

var (
	// ErrNewsTitleRequired 新闻标题缺失错误
	ErrNewsTitleRequired = errors.New("news title is required")
	// ErrCommentContentRequired 评论内容缺失错误
	ErrCommentContentRequired = errors.New("comment content is required")
)

// NewsService 封装新闻与评论的业务逻辑
type NewsService struct {
	repo  storage.NewsRepository
	staff storage.StaffRepository
	files *filesystem.Store
	log   *zap.Logger

	uploadCfg config.UploadConfig
	filter    *security.ContentFilter
}

// NewNewsService 创建新闻业务服务
func NewNewsService(
	repo storage.NewsRepository,
	staff storage.StaffRepository,
	files *filesystem.Store,
	uploadCfg config.UploadConfig,
	log *zap.Logger,
) *NewsService {
	return &NewsService{
		repo:      repo,
		staff:     staff,
		files:     files,
		uploadCfg: uploadCfg,
		filter:    security.NewContentFilter(),
		log:       log,
	}
}

// CreateNewsInput 定义创建新闻的输入
type CreateNewsInput struct {
	Title       string
	Description string
	Author      string
	ReadTime    string
	Tag         string
	Quotes      string
	Image       *Upload
}

// Create 发布新闻。配图先落盘，写库失败时删除孤儿文件。
func (s *NewsService) Create(input CreateNewsInput) (*domain.News, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrNewsTitleRequired
	}
	if err := validateUpload(input.Image, s.uploadCfg); err != nil {
		return nil, err
	}

	news := &domain.News{
		Title:       input.Title,
		Description: input.Description,
		Author:      input.Author,
		ReadTime:    input.ReadTime,
		Tag:         input.Tag,
		Quotes:      input.Quotes,
	}

	var savedPath string
	var err error
	if input.Image != nil {
		savedPath, err = s.files.Save(filesystem.CategoryNews, input.Image.Filename, input.Image.Data)
		if err != nil {
			return nil, err
		}
		news.ImagePath = &savedPath
	}

	if err := s.repo.CreateNews(news); err != nil {
		if savedPath != "" {
			if cleanupErr := s.files.Delete(savedPath); cleanupErr != nil {
				s.log.Warn("failed to clean up orphan news image",
					zap.String("path", savedPath), zap.Error(cleanupErr))
			}
		}
		return nil, err
	}

	s.log.Info("news created", zap.Int64("id", news.ID), zap.String("title", news.Title))
	return news, nil
}

// Get 按 id 查询新闻
func (s *NewsService) Get(id int64) (*domain.News, error) {
	return s.repo.GetNews(id)
}

// List 返回全部新闻，创建时间倒序
func (s *NewsService) List() ([]domain.News, error) {
	return s.repo.ListNews()
}

// UpdateNewsInput 定义更新新闻的输入，nil 字段保持不变
type UpdateNewsInput struct {
	Title       *string
	Description *string
	Author      *string
	ReadTime    *string
	Tag         *string
	Quotes      *string
	Image       *Upload
}

// Update 更新新闻。新配图先落盘，写库成功后再删旧文件。
func (s *NewsService) Update(id int64, input UpdateNewsInput) (*domain.News, error) {
	news, err := s.repo.GetNews(id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrNewsTitleRequired
		}
		news.Title = *input.Title
	}
	if input.Description != nil {
		news.Description = *input.Description
	}
	if input.Author != nil {
		news.Author = *input.Author
	}
	if input.ReadTime != nil {
		news.ReadTime = *input.ReadTime
	}
	if input.Tag != nil {
		news.Tag = *input.Tag
	}
	if input.Quotes != nil {
		news.Quotes = *input.Quotes
	}
	if err := validateUpload(input.Image, s.uploadCfg); err != nil {
		return nil, err
	}

	oldPath := ""
	if news.ImagePath != nil {
		oldPath = *news.ImagePath
	}

	newPath := ""
	if input.Image != nil {
		newPath, err = s.files.Save(filesystem.CategoryNews, input.Image.Filename, input.Image.Data)
		if err != nil {
			return nil, err
		}
		news.ImagePath = &newPath
	}

	if err := s.repo.UpdateNews(news); err != nil {
		if newPath != "" {
			if cleanupErr := s.files.Delete(newPath); cleanupErr != nil {
				s.log.Warn("failed to clean up orphan news image",
					zap.String("path", newPath), zap.Error(cleanupErr))
			}
		}
		return nil, err
	}

	if newPath != "" && oldPath != "" {
		if err := s.files.Delete(oldPath); err != nil {
			s.log.Warn("failed to delete replaced news image",
				zap.String("path", oldPath), zap.Error(err))
		}
	}

	s.log.Info("news updated", zap.Int64("id", id))
	return news, nil
}

// Delete 删除新闻及其配图，评论由存储层级联删除
func (s *NewsService) Delete(id int64) error {
	news, err := s.repo.GetNews(id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteNews(id); err != nil {
		return err
	}

	if news.ImagePath != nil {
		if err := s.files.Delete(*news.ImagePath); err != nil {
			s.log.Warn("failed to delete news image",
				zap.Int64("id", id), zap.String("path", *news.ImagePath), zap.Error(err))
		}
	}

	s.log.Info("news deleted", zap.Int64("id", id))
	return nil
}

// ========== 评论 ==========

// CommentInput 定义发表评论的输入。
// StaffID 非空时视为员工评论，署名取员工档案。
type CommentInput struct {
	Name    string
	Email   string
	Content string
	StaffID *int64
}

// AddComment 在某新闻下发表评论
func (s *NewsService) AddComment(newsID int64, input CommentInput) (*domain.NewsComment, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, ErrCommentContentRequired
	}
	if err := s.filter.Check(input.Content); err != nil {
		s.log.Warn("comment rejected by content filter", zap.Int64("news_id", newsID))
		return nil, err
	}

	comment := &domain.NewsComment{
		NewsID:  newsID,
		Name:    input.Name,
		Email:   input.Email,
		Content: input.Content,
		StaffID: input.StaffID,
	}

	if input.StaffID != nil {
		staff, err := s.staff.GetStaff(*input.StaffID)
		if err != nil {
			return nil, err
		}
		comment.Name = staff.Name
		comment.Email = staff.Email
	}

	if err := s.repo.CreateNewsComment(comment); err != nil {
		return nil, err
	}

	s.log.Info("comment added", zap.Int64("id", comment.ID), zap.Int64("news_id", newsID))
	return comment, nil
}

// ListComments 返回某新闻下的全部评论
func (s *NewsService) ListComments(newsID int64) ([]domain.NewsComment, error) {
	if _, err := s.repo.GetNews(newsID); err != nil {
		return nil, err
	}
	return s.repo.ListNewsComments(newsID)
}

// DeleteComment 删除评论
func (s *NewsService) DeleteComment(id int64) error {
	if err := s.repo.DeleteNewsComment(id); err != nil {
		return err
	}
	s.log.Info("comment deleted", zap.Int64("id", id))
	return nil
}
